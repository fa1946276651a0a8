package liveboard

import (
	"testing"
	"time"
)

func TestGameID(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		away  string
		home  string
		want  string
	}{
		{
			name:  "basic",
			start: time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC),
			away:  "HT",
			home:  "LG",
			want:  "20240501HTLG0",
		},
		{
			name:  "zero padded month and day",
			start: time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC),
			away:  "OB",
			home:  "SS",
			want:  "20240309OBSS0",
		},
		{
			name:  "codes verbatim",
			start: time.Date(2023, 10, 12, 0, 0, 0, 0, time.UTC),
			away:  "",
			home:  "x y",
			want:  "20231012x y0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GameID(tt.start, tt.away, tt.home); got != tt.want {
				t.Errorf("GameID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGameID_UsesStartLocation(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)
	// 00:30 on May 1 in KST is still April 30 in UTC
	start := time.Date(2024, 5, 1, 0, 30, 0, 0, kst)

	if got := GameID(start, "HT", "LG"); got != "20240501HTLG0" {
		t.Errorf("GameID() = %q, want date in the descriptor's location", got)
	}
	if got := GameID(start.UTC(), "HT", "LG"); got != "20240430HTLG0" {
		t.Errorf("GameID(UTC) = %q, want %q", got, "20240430HTLG0")
	}
}

func TestGameID_AwayHomeOrderMatters(t *testing.T) {
	start := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	if GameID(start, "HT", "LG") == GameID(start, "LG", "HT") {
		t.Error("swapping away and home must change the game id")
	}
}

func TestBuildTargets(t *testing.T) {
	events := []EventDescriptor{
		testEvent(3, "HT", "LG"),
		testEvent(1, "LG", "HT"),
	}

	targets := BuildTargets("https://example.com/live", events)
	if len(targets) != 2 {
		t.Fatalf("len(targets) = %d, want 2", len(targets))
	}

	want := []string{
		"https://example.com/live?leagueId=1&seriesId=0&gameId=20240501HTLG0&gyear=2024",
		"https://example.com/live?leagueId=1&seriesId=0&gameId=20240501LGHT0&gyear=2024",
	}
	for i, target := range targets {
		if target.Event != events[i] {
			t.Errorf("targets[%d].Event = %+v, want input order preserved", i, target.Event)
		}
		if target.Address != want[i] {
			t.Errorf("targets[%d].Address = %q, want %q", i, target.Address, want[i])
		}
	}
	if targets[0].Address == targets[1].Address {
		t.Error("HT@LG and LG@HT on the same day must not share an address")
	}
}

func TestBuildTargets_Deterministic(t *testing.T) {
	events := []EventDescriptor{testEvent(1, "HT", "LG"), testEvent(2, "SK", "NC")}

	first := BuildTargets("", events)
	second := BuildTargets("", events)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("BuildTargets() not deterministic at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuildTargets_DefaultBaseURL(t *testing.T) {
	targets := BuildTargets("", []EventDescriptor{testEvent(1, "HT", "LG")})

	want := DefaultBaseURL + "?leagueId=1&seriesId=0&gameId=20240501HTLG0&gyear=2024"
	if targets[0].Address != want {
		t.Errorf("Address = %q, want %q", targets[0].Address, want)
	}
}

func TestBuildTargets_Empty(t *testing.T) {
	if got := BuildTargets("", nil); len(got) != 0 {
		t.Errorf("BuildTargets(nil) = %v, want empty", got)
	}
}

func TestChannel(t *testing.T) {
	target := BuildTargets("", []EventDescriptor{testEvent(815, "HT", "LG")})[0]
	if got := target.Channel(); got != "live_board:815" {
		t.Errorf("Channel() = %q, want %q", got, "live_board:815")
	}
	if ChannelFor(815) != target.Channel() {
		t.Error("ChannelFor() and Channel() disagree")
	}
}
