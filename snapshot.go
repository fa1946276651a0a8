package liveboard

import "encoding/json"

// Snapshot is the structured result of one successful extraction.
//
// A Snapshot is produced fresh on every tick and handed to the [Publisher]
// as part of a [Payload]; the crawler does not retain it. JSON field names
// match what downstream live board consumers already read.
type Snapshot struct {
	// Roster lists the players shown on the board, in document order.
	Roster []RosterEntry `json:"players"`

	// Messages is the play-by-play log, in document order, with blank and
	// separator lines removed.
	Messages []Message `json:"liveBoardMessages"`

	// Count is the current strike/ball/out indicator state.
	Count CountState `json:"matchScore"`
}

// RosterEntry is one player line of the board.
type RosterEntry struct {
	// Role is the entry's class label as rendered, e.g. "pitcher".
	Role string `json:"role"`

	// Name is the trimmed visible text of the entry.
	Name string `json:"name"`
}

// Message is one play-by-play line.
type Message struct {
	// SourceID is the id of the message container the line came from.
	SourceID string `json:"sourceId"`

	// Category is the line's style class (e.g. "normaiflTxt", "blue", "red").
	Category string `json:"type"`

	// Text is the whitespace-collapsed line content.
	Text string `json:"content"`
}

// CountState holds the number of lit indicators in each count group.
type CountState struct {
	Strikes int `json:"strike"`
	Balls   int `json:"ball"`
	Outs    int `json:"out"`
}

// Payload is the message published for every successful tick: all snapshot
// fields plus the event id.
type Payload struct {
	Snapshot
	EventID int64 `json:"match_id"`
}

// Encode serializes the payload to the JSON published on the event channel.
// Empty roster and message lists encode as [] rather than null.
func (p Payload) Encode() ([]byte, error) {
	if p.Roster == nil {
		p.Roster = []RosterEntry{}
	}
	if p.Messages == nil {
		p.Messages = []Message{}
	}
	return json.Marshal(p)
}
