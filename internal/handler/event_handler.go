package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/devevent-api/internal/dto"
	"github.com/noah-isme/devevent-api/internal/models"
	"github.com/noah-isme/devevent-api/internal/service"
	appErrors "github.com/noah-isme/devevent-api/pkg/errors"
	"github.com/noah-isme/devevent-api/pkg/response"
)

const imageFormField = "image"

type eventService interface {
	Create(ctx context.Context, req dto.CreateEventRequest, image *service.ImageUpload) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
}

type eventExporter interface {
	Export(ctx context.Context, format string) (*service.ExportResult, error)
}

// EventHandler exposes event endpoints.
type EventHandler struct {
	events   eventService
	exporter eventExporter
}

// NewEventHandler constructs the handler.
func NewEventHandler(events eventService, exporter eventExporter) *EventHandler {
	return &EventHandler{events: events, exporter: exporter}
}

// Create godoc
// @Summary Create event
// @Description Accepts a multipart form with the event fields and an image file. agenda and tags may be repeated or sent as one JSON array string.
// @Tags Events
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param overview formData string true "Overview"
// @Param venue formData string true "Venue"
// @Param location formData string true "Location"
// @Param date formData string true "Date, any common format"
// @Param time formData string true "Time, HH:MM with optional AM/PM"
// @Param mode formData string true "online, offline or hybrid"
// @Param audience formData string true "Audience"
// @Param agenda formData []string true "Agenda items" collectionFormat(multi)
// @Param organizer formData string true "Organizer"
// @Param tags formData []string true "Tags" collectionFormat(multi)
// @Param image formData file true "Event image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid form payload"))
		return
	}

	var image *service.ImageUpload
	header, err := c.FormFile(imageFormField)
	switch {
	case err == nil:
		file, openErr := header.Open()
		if openErr != nil {
			response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, openErr, "image could not be read"))
			return
		}
		defer file.Close()
		image = &service.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid multipart payload"))
		return
	}

	event, err := h.events.Create(c.Request.Context(), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event, map[string]interface{}{"message": "event created successfully"})
}

// List godoc
// @Summary List events
// @Description Returns every event, newest first.
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, map[string]interface{}{"message": "events fetched successfully", "count": len(events)})
}

// GetBySlug godoc
// @Summary Get event by slug
// @Tags Events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{slug} [get]
func (h *EventHandler) GetBySlug(c *gin.Context) {
	event, err := h.events.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Export godoc
// @Summary Export events
// @Tags Events
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /events/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	result, err := h.exporter.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
