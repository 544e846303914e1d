package models

import "time"

// EventMode describes how attendees join an event.
type EventMode string

const (
	EventModeOnline  EventMode = "online"
	EventModeOffline EventMode = "offline"
	EventModeHybrid  EventMode = "hybrid"
)

// Valid reports whether the mode is one of the supported values.
func (m EventMode) Valid() bool {
	switch m {
	case EventModeOnline, EventModeOffline, EventModeHybrid:
		return true
	default:
		return false
	}
}

// Event is a published developer event. Slug, Date and Time hold canonical
// values derived at creation time.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	Overview    string    `db:"overview" json:"overview"`
	Image       string    `db:"image" json:"image"`
	Venue       string    `db:"venue" json:"venue"`
	Location    string    `db:"location" json:"location"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Mode        EventMode `db:"mode" json:"mode"`
	Audience    string    `db:"audience" json:"audience"`
	Agenda      []string  `db:"agenda" json:"agenda"`
	Organizer   string    `db:"organizer" json:"organizer"`
	Tags        []string  `db:"tags" json:"tags"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
