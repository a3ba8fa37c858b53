package calendar

import (
	"testing"
	"time"

	"github.com/nexora/nexora/pkg/models"
)

func fixtureEvents() []models.Event {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	return []models.Event{
		{ID: "ev-1", Title: "Llamada importante", Start: day.Add(22 * time.Hour)},
		{ID: "ev-2", Title: "Reunión equipo", Start: day.Add(10 * time.Hour)},
	}
}

func TestMatchEvent_ExactID(t *testing.T) {
	events := fixtureEvents()
	res := MatchEvent(events, "ev-2", "", "")
	if res.Confidence != ConfidenceExact || res.Event == nil || res.Event.ID != "ev-2" {
		t.Fatalf("got %+v", res)
	}
}

func TestMatchEvent_TimeReference(t *testing.T) {
	events := fixtureEvents()
	res := MatchEvent(events, "", "", "10pm")
	if res.Confidence != ConfidenceMedium {
		t.Fatalf("confidence = %s, want %s", res.Confidence, ConfidenceMedium)
	}
	if res.Event == nil || res.Event.Start.Hour() != 22 {
		t.Fatalf("matched wrong event: %+v", res.Event)
	}
}

func TestMatchEvent_TitleSubstring(t *testing.T) {
	events := fixtureEvents()
	res := MatchEvent(events, "", "reunión", "")
	if res.Confidence != ConfidenceHigh {
		t.Fatalf("confidence = %s, want %s", res.Confidence, ConfidenceHigh)
	}
	if res.Event == nil || res.Event.ID != "ev-2" {
		t.Fatalf("matched wrong event: %+v", res.Event)
	}
}

func TestMatchEvent_NoMatchReturnsCandidates(t *testing.T) {
	events := fixtureEvents()
	res := MatchEvent(events, "", "x", "")
	if res.Confidence != ConfidenceNone || res.Event != nil {
		t.Fatalf("got %+v", res)
	}
	if len(res.Candidates) != 2 {
		t.Fatalf("expected both candidates, got %d", len(res.Candidates))
	}
}

func TestMatchEvent_SingleCandidateIsLow(t *testing.T) {
	events := fixtureEvents()[:1]
	res := MatchEvent(events, "", "", "")
	if res.Confidence != ConfidenceLow || res.Event == nil || res.Event.ID != "ev-1" {
		t.Fatalf("got %+v", res)
	}
}

func TestParseTimeToken(t *testing.T) {
	cases := []struct {
		in           string
		hour, minute int
		ok           bool
	}{
		{"10pm", 22, 0, true},
		{"22:00", 22, 0, true},
		{"10:30am", 10, 30, true},
		{"12am", 0, 0, true},
		{"12pm", 12, 0, true},
		{"a las 9", 9, 0, true},
		{"", 0, 0, false},
		{"mañana", 0, 0, false},
	}
	for _, c := range cases {
		hour, minute, ok := parseTimeToken(c.in)
		if ok != c.ok || (ok && (hour != c.hour || minute != c.minute)) {
			t.Errorf("parseTimeToken(%q) = (%d, %d, %v), want (%d, %d, %v)", c.in, hour, minute, ok, c.hour, c.minute, c.ok)
		}
	}
}
