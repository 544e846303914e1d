package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/devevent-api/internal/models"
	appErrors "github.com/noah-isme/devevent-api/pkg/errors"
	"github.com/noah-isme/devevent-api/pkg/export"
)

type eventLister interface {
	List(ctx context.Context) ([]models.Event, error)
}

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the event listing as a downloadable document.
type ExportService struct {
	events eventLister
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(events eventLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{events: events, logger: logger, now: time.Now}
}

// Export renders all events, newest first, in the requested format.
func (s *ExportService) Export(ctx context.Context, format string) (*ExportResult, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrValidation, err, "format must be csv or pdf")
	}

	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := renderer.Render(eventDataset(events))
	if err != nil {
		s.logger.Error("render export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("events_%s%s", s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        payload,
	}, nil
}

func eventDataset(events []models.Event) export.Dataset {
	dataset := export.Dataset{
		Title:   "DevEvent - Events",
		Headers: []string{"Title", "Slug", "Date", "Time", "Mode", "Venue", "Location", "Organizer", "Tags", "Image"},
		Rows:    make([][]string, 0, len(events)),
	}
	for _, e := range events {
		dataset.Rows = append(dataset.Rows, []string{
			e.Title,
			e.Slug,
			e.Date,
			e.Time,
			string(e.Mode),
			e.Venue,
			e.Location,
			e.Organizer,
			strings.Join(e.Tags, ", "),
			e.Image,
		})
	}
	return dataset
}
