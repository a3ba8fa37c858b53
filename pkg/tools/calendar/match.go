package calendar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nexora/nexora/pkg/models"
)

// Match confidence levels
const (
	ConfidenceExact  = "exact"
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
	ConfidenceNone   = "none"
)

// MatchResult is the outcome of resolving a vague event reference.
type MatchResult struct {
	Event      *models.Event  `json:"event,omitempty"`
	Confidence string         `json:"confidence"`
	Candidates []models.Event `json:"candidates,omitempty"`
}

var timeTokenRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

// parseTimeToken extracts an hour and minute from a loose time
// reference like "10pm", "22:00" or "10:30am". Returns ok=false when
// nothing parseable is found.
func parseTimeToken(s string) (hour, minute int, ok bool) {
	m := timeTokenRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// MatchEvent resolves an event reference against a candidate list.
// Criteria are tried strongest first: exact ID, then title substring,
// then start time, then a lone candidate. When nothing matches the
// result carries the candidates so the model can ask the user.
func MatchEvent(events []models.Event, eventID, searchTitle, searchTime string) MatchResult {
	if eventID != "" {
		for i := range events {
			if events[i].ID == eventID {
				return MatchResult{Event: &events[i], Confidence: ConfidenceExact}
			}
		}
	}

	if searchTitle != "" {
		query := strings.ToLower(strings.TrimSpace(searchTitle))
		var hits []int
		for i := range events {
			if strings.Contains(strings.ToLower(events[i].Title), query) {
				hits = append(hits, i)
			}
		}
		switch len(hits) {
		case 0:
		case 1:
			return MatchResult{Event: &events[hits[0]], Confidence: ConfidenceHigh}
		default:
			// Ambiguous title. Let a time reference break the tie.
			if hour, minute, ok := parseTimeToken(searchTime); ok {
				for _, i := range hits {
					if matchesStart(events[i], hour, minute, searchTime) {
						return MatchResult{Event: &events[i], Confidence: ConfidenceMedium}
					}
				}
			}
			candidates := make([]models.Event, 0, len(hits))
			for _, i := range hits {
				candidates = append(candidates, events[i])
			}
			return MatchResult{Confidence: ConfidenceNone, Candidates: candidates}
		}
	}

	if hour, minute, ok := parseTimeToken(searchTime); ok {
		var hits []int
		for i := range events {
			if matchesStart(events[i], hour, minute, searchTime) {
				hits = append(hits, i)
			}
		}
		if len(hits) == 1 {
			return MatchResult{Event: &events[hits[0]], Confidence: ConfidenceMedium}
		}
	}

	if len(events) == 1 {
		return MatchResult{Event: &events[0], Confidence: ConfidenceLow}
	}

	return MatchResult{Confidence: ConfidenceNone, Candidates: events}
}

// matchesStart reports whether the event starts at the referenced time.
// Minutes are only compared when the reference spelled them out.
func matchesStart(ev models.Event, hour, minute int, raw string) bool {
	if ev.Start.Hour() != hour {
		return false
	}
	if strings.Contains(raw, ":") {
		return ev.Start.Minute() == minute
	}
	return true
}
