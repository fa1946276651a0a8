package liveboard

import (
	"fmt"
	"time"
)

// DefaultBaseURL is the live text page every monitoring address is built on.
const DefaultBaseURL = "https://www.koreabaseball.com/Game/LiveText.aspx"

// EventDescriptor identifies one scheduled match to monitor.
//
// Descriptors are supplied by an external event source and are treated as
// read-only by the crawler. Start carries its own location; the calendar date
// used for the game id is taken in that location.
type EventDescriptor struct {
	ID       int64     `json:"match_id" yaml:"match_id"`
	AwayName string    `json:"away_team_name" yaml:"away_team_name"`
	AwayCode string    `json:"away_team_code" yaml:"away_team_code"`
	HomeName string    `json:"home_team_name" yaml:"home_team_name"`
	HomeCode string    `json:"home_team_code" yaml:"home_team_code"`
	Start    time.Time `json:"match_time" yaml:"match_time"`
}

// MonitoringTarget is an [EventDescriptor] paired with the address of its
// live board page. Targets are immutable once built.
type MonitoringTarget struct {
	Event   EventDescriptor
	Address string
}

// Channel returns the publish channel for the target's event.
func (t MonitoringTarget) Channel() string {
	return ChannelFor(t.Event.ID)
}

// ChannelFor returns the publish channel name for an event id.
func ChannelFor(eventID int64) string {
	return fmt.Sprintf("live_board:%d", eventID)
}

// GameID composes the site's game identifier: the zero-padded start date
// (YYYYMMDD), then the away code, then the home code, then "0".
func GameID(start time.Time, awayCode, homeCode string) string {
	return start.Format("20060102") + awayCode + homeCode + "0"
}

// BuildTargets derives one [MonitoringTarget] per descriptor, in input order.
//
// BuildTargets is pure: the address depends only on baseURL and the
// descriptor's start date and team codes. Malformed descriptors produce
// malformed addresses; validation belongs to the event source. An empty
// baseURL selects [DefaultBaseURL].
func BuildTargets(baseURL string, events []EventDescriptor) []MonitoringTarget {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	targets := make([]MonitoringTarget, 0, len(events))
	for _, ev := range events {
		targets = append(targets, MonitoringTarget{
			Event:   ev,
			Address: buildAddress(baseURL, ev),
		})
	}
	return targets
}

// buildAddress keeps the site's parameter order and leaves the codes as
// given.
func buildAddress(baseURL string, ev EventDescriptor) string {
	gameID := GameID(ev.Start, ev.AwayCode, ev.HomeCode)
	return fmt.Sprintf("%s?leagueId=1&seriesId=0&gameId=%s&gyear=%d",
		baseURL, gameID, ev.Start.Year())
}
