package dto

import "github.com/noah-isme/devevent-api/internal/models"

// CreateEventRequest carries the text fields of an event submission. Agenda
// and Tags accept repeated form values or a single JSON array string.
type CreateEventRequest struct {
	Title       string           `form:"title" json:"title" validate:"required"`
	Description string           `form:"description" json:"description" validate:"required"`
	Overview    string           `form:"overview" json:"overview" validate:"required"`
	Venue       string           `form:"venue" json:"venue" validate:"required"`
	Location    string           `form:"location" json:"location" validate:"required"`
	Date        string           `form:"date" json:"date" validate:"required"`
	Time        string           `form:"time" json:"time" validate:"required"`
	Mode        models.EventMode `form:"mode" json:"mode" validate:"required,oneof=online offline hybrid"`
	Audience    string           `form:"audience" json:"audience" validate:"required"`
	Agenda      []string         `form:"agenda" json:"agenda" validate:"required,min=1,dive,required"`
	Organizer   string           `form:"organizer" json:"organizer" validate:"required"`
	Tags        []string         `form:"tags" json:"tags" validate:"required,min=1,dive,required"`
}
