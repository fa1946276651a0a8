package liveboard

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

var liveBoardHTML = `<html><head><title>Live</title></head><body>
<div class="playerName">
  <ul>
    <li class="pitcher">  Kim Kwang-hyun </li>
    <li class="batter">Choi
        Jeong</li>
  </ul>
</div>
<div class="broadcast">
  <div class="numCon" id="inning1">
    <span class="normaiflTxt">1st   inning
        top</span>
    <span class="normaiflTxt">   </span>
    <span class="blue">-</span>
    <span class="red">` + strings.Repeat("-", 39) + `</span>
    <span class="blue">  Strikeout  swinging </span>
  </div>
  <div class="numCon" id="inning2">
    <span class="red">Home run!</span>
    <span class="other">not a message</span>
  </div>
</div>
<div class="sbo">
  <ul class="s"><li class="on"></li><li class="on"></li></ul>
  <ul class="b"><li class="on"></li><li></li><li></li></ul>
  <ul class="o"><li></li><li></li></ul>
</div>
</body></html>`

func TestExtract(t *testing.T) {
	snap, err := Extract(liveBoardHTML)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantRoster := []RosterEntry{
		{Role: "pitcher", Name: "Kim Kwang-hyun"},
		{Role: "batter", Name: "Choi Jeong"},
	}
	if len(snap.Roster) != len(wantRoster) {
		t.Fatalf("len(Roster) = %d, want %d", len(snap.Roster), len(wantRoster))
	}
	for i, want := range wantRoster {
		if snap.Roster[i] != want {
			t.Errorf("Roster[%d] = %+v, want %+v", i, snap.Roster[i], want)
		}
	}

	wantMessages := []Message{
		{SourceID: "inning1", Category: "normaiflTxt", Text: "1st inning top"},
		{SourceID: "inning1", Category: "blue", Text: "Strikeout swinging"},
		{SourceID: "inning2", Category: "red", Text: "Home run!"},
	}
	if len(snap.Messages) != len(wantMessages) {
		t.Fatalf("Messages = %+v, want %+v", snap.Messages, wantMessages)
	}
	for i, want := range wantMessages {
		if snap.Messages[i] != want {
			t.Errorf("Messages[%d] = %+v, want %+v", i, snap.Messages[i], want)
		}
	}

	wantCount := CountState{Strikes: 2, Balls: 1, Outs: 0}
	if snap.Count != wantCount {
		t.Errorf("Count = %+v, want %+v", snap.Count, wantCount)
	}
}

func TestExtract_RosterNameIsVisibleText(t *testing.T) {
	tests := []struct {
		name string
		li   string
		want string
	}{
		{"plain", `<li class="batter">Park</li>`, "Park"},
		{"line break", `<li class="batter">Kim<br>Ha-seong</li>`, "Kim Ha-seong"},
		{"hidden note", `<li class="pitcher">Ryu <span hidden>(injured)</span></li>`, "Ryu"},
		{"wrapped", "<li class=\"batter\">\n  Lee\n  Jung-hoo\n</li>", "Lee Jung-hoo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<div class="playerName"><ul>` + tt.li + `</ul></div><div class="sbo"></div>`
			snap, err := Extract(html)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if len(snap.Roster) != 1 {
				t.Fatalf("len(Roster) = %d, want 1", len(snap.Roster))
			}
			if snap.Roster[0].Name != tt.want {
				t.Errorf("Name = %q, want %q", snap.Roster[0].Name, tt.want)
			}
		})
	}
}

func TestExtract_EmptyBoard(t *testing.T) {
	snap, err := Extract(`<html><body><div class="sbo"></div></body></html>`)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if snap.Roster == nil || snap.Messages == nil {
		t.Error("empty board should yield empty, non-nil lists")
	}
	if len(snap.Roster) != 0 || len(snap.Messages) != 0 {
		t.Errorf("Extract() = %+v, want empty lists", snap)
	}
	if snap.Count != (CountState{}) {
		t.Errorf("Count = %+v, want zero", snap.Count)
	}
}

func TestExtract_NoCountBoard(t *testing.T) {
	_, err := Extract(`<html><body><p>Game over</p></body></html>`)
	if !errors.Is(err, ErrNoCountBoard) {
		t.Errorf("Extract() error = %v, want ErrNoCountBoard", err)
	}
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "", wantOK: false},
		{raw: "   \n\t ", wantOK: false},
		{raw: "-", wantOK: false},
		{raw: "  -  ", wantOK: false},
		{raw: strings.Repeat("-", 39), wantOK: false},
		{raw: " " + strings.Repeat("-", 39) + "\n", wantOK: false},
		{raw: strings.Repeat("-", 38), want: strings.Repeat("-", 38), wantOK: true},
		{raw: strings.Repeat("-", 40), want: strings.Repeat("-", 40), wantOK: true},
		{raw: "--", want: "--", wantOK: true},
		{raw: "  a   b ", want: "a b", wantOK: true},
		{raw: "a\t\n b", want: "a b", wantOK: true},
		{raw: "Ball 4", want: "Ball 4", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeMessage(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NormalizeMessage(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtract_MessageFiltering(t *testing.T) {
	raw := []string{"", "-", strings.Repeat("-", 39), "  a   b "}

	var html strings.Builder
	html.WriteString(`<html><body><div class="broadcast"><div class="numCon" id="c">`)
	for _, line := range raw {
		html.WriteString(`<span class="blue">` + line + `</span>`)
	}
	html.WriteString(`</div></div><div class="sbo"></div></body></html>`)

	snap, err := Extract(html.String())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(snap.Messages) != 1 || snap.Messages[0].Text != "a b" {
		t.Errorf("Messages = %+v, want a single \"a b\"", snap.Messages)
	}
}

func TestPayloadEncode_FieldNames(t *testing.T) {
	snap, err := Extract(liveBoardHTML)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	data, err := Payload{Snapshot: snap, EventID: 42}.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("failed to parse payload: %v", err)
	}
	for _, key := range []string{"players", "liveBoardMessages", "matchScore", "match_id"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("payload missing key %q: %s", key, data)
		}
	}
	if string(doc["match_id"]) != "42" {
		t.Errorf("match_id = %s, want 42", doc["match_id"])
	}
	if string(doc["matchScore"]) != `{"strike":2,"ball":1,"out":0}` {
		t.Errorf("matchScore = %s", doc["matchScore"])
	}
	if !strings.Contains(string(doc["liveBoardMessages"]), `{"sourceId":"inning2","type":"red","content":"Home run!"}`) {
		t.Errorf("liveBoardMessages = %s", doc["liveBoardMessages"])
	}
	if !strings.Contains(string(doc["players"]), `{"role":"pitcher","name":"Kim Kwang-hyun"}`) {
		t.Errorf("players = %s", doc["players"])
	}
}

func TestPayloadEncode_EmptyListsAreArrays(t *testing.T) {
	data, err := Payload{EventID: 1}.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got := string(data)
	for _, want := range []string{`"players":[]`, `"liveBoardMessages":[]`} {
		if !strings.Contains(got, want) {
			t.Errorf("Encode() = %s, want it to contain %s", got, want)
		}
	}
}
