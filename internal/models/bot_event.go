package models

import "time"

// BotEvent is a candidate event descriptor produced by an event source,
// upstream of the importer's dedup check.
type BotEvent struct {
	Title        string
	Caption      string
	Lat          float64
	Lng          float64
	Source       string
	EventURL     string
	EventDate    *time.Time
	EventEndDate *time.Time
}
