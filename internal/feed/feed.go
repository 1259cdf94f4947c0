package feed

import (
	"fmt"
	"time"
)

// EventType is a coarse category of what kind of news event an article represents.
type EventType string

const (
	EventPolicySafety     EventType = "policy_safety"
	EventProductLaunch    EventType = "product_launch"
	EventFundingMajor     EventType = "funding_major"
	EventFundingMinor     EventType = "funding_minor"
	EventResearchSOTA     EventType = "research_sota"
	EventSecurityIncident EventType = "security_incident"
	EventLawsuit          EventType = "lawsuit"
	EventChipInfra        EventType = "chip_infra"
	EventOpinion          EventType = "opinion"
	EventUnknown          EventType = "unknown"
)

// CandidateItem is a raw news entry as returned by a content source,
// before classification and filtering. URL is the deduplication key.
type CandidateItem struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
	Description string
}

// ClassifiedItem is a candidate enriched with source authority,
// a detected event type and matched entity terms.
type ClassifiedItem struct {
	CandidateItem

	Authority float64 // 0-2 scale by source tier
	EventType EventType
	Entities  []string // lowercased matched terms, no duplicates
}

// ScoredItem carries the final relevance score in [0,1].
type ScoredItem struct {
	ClassifiedItem

	RelevanceScore float64
}

// Article is the final output unit served to clients.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
	Summary     string    `json:"summary"`
}

// Snapshot is the persisted result of one pipeline run for a given week.
// Immutable once written except for full overwrite on forced refresh.
type Snapshot struct {
	WeekID    string    `json:"weekId"`
	WeekLabel string    `json:"weekLabel"`
	Articles  []Article `json:"articles"`
	CreatedAt time.Time `json:"createdAt"`
}

// Window bounds a fetch to a time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// MondayOfWeek returns 00:00 UTC of the Monday of t's week.
func MondayOfWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started 6 days back
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekID returns the ISO-week period key for t, e.g. "2026-W35".
func WeekID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekLabel returns a human-readable label for the week containing t,
// e.g. "August 24".
func WeekLabel(t time.Time) string {
	monday := MondayOfWeek(t)
	return monday.Format("January 2")
}

// WeekWindow returns the Monday-to-Sunday window containing t.
func WeekWindow(t time.Time) Window {
	monday := MondayOfWeek(t)
	return Window{Start: monday, End: monday.AddDate(0, 0, 7)}
}
