package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/devevent-api/internal/models"
)

const (
	uniqueViolation    = "23505"
	slugConstraintName = "events_slug_key"
)

// ErrDuplicateSlug is returned by Create when another row already holds the slug.
var ErrDuplicateSlug = errors.New("event slug already exists")

// QueryObserver receives database timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

const eventColumns = `id, title, slug, description, overview, image, venue, location, date, time,
       mode, audience, agenda, organizer, tags, created_at, updated_at`

type eventRow struct {
	ID          string           `db:"id"`
	Title       string           `db:"title"`
	Slug        string           `db:"slug"`
	Description string           `db:"description"`
	Overview    string           `db:"overview"`
	Image       string           `db:"image"`
	Venue       string           `db:"venue"`
	Location    string           `db:"location"`
	Date        string           `db:"date"`
	Time        string           `db:"time"`
	Mode        models.EventMode `db:"mode"`
	Audience    string           `db:"audience"`
	Agenda      pq.StringArray   `db:"agenda"`
	Organizer   string           `db:"organizer"`
	Tags        pq.StringArray   `db:"tags"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

func toEventRow(e *models.Event) eventRow {
	return eventRow{
		ID:          e.ID,
		Title:       e.Title,
		Slug:        e.Slug,
		Description: e.Description,
		Overview:    e.Overview,
		Image:       e.Image,
		Venue:       e.Venue,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Mode:        e.Mode,
		Audience:    e.Audience,
		Agenda:      pq.StringArray(e.Agenda),
		Organizer:   e.Organizer,
		Tags:        pq.StringArray(e.Tags),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func (r eventRow) model() models.Event {
	return models.Event{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		Overview:    r.Overview,
		Image:       r.Image,
		Venue:       r.Venue,
		Location:    r.Location,
		Date:        r.Date,
		Time:        r.Time,
		Mode:        r.Mode,
		Audience:    r.Audience,
		Agenda:      []string(r.Agenda),
		Organizer:   r.Organizer,
		Tags:        []string(r.Tags),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// EventRepository persists events in PostgreSQL.
type EventRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewEventRepository constructs the repository. observer may be nil.
func NewEventRepository(db *sqlx.DB, observer QueryObserver) *EventRepository {
	return &EventRepository{db: db, observer: observer}
}

// Create inserts a new event, assigning id and timestamps when unset.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	defer r.observe("events.create", time.Now())
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO events
	(id, title, slug, description, overview, image, venue, location, date, time, mode, audience, agenda, organizer, tags, created_at, updated_at)
	VALUES (:id, :title, :slug, :description, :overview, :image, :venue, :location, :date, :time, :mode, :audience, :agenda, :organizer, :tags, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, toEventRow(event)); err != nil {
		if isSlugViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// SlugExists reports whether an event other than excludeID holds slug.
func (r *EventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	defer r.observe("events.slug_exists", time.Now())
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug, excludeID); err != nil {
		return false, fmt.Errorf("check event slug: %w", err)
	}
	return exists, nil
}

// GetBySlug returns one event or sql.ErrNoRows.
func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	defer r.observe("events.get_by_slug", time.Now())
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	var row eventRow
	if err := r.db.GetContext(ctx, &row, query, slug); err != nil {
		return nil, err
	}
	event := row.model()
	return &event, nil
}

// List returns every event, newest first.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	defer r.observe("events.list", time.Now())
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.model())
	}
	return events, nil
}

// Ping checks database reachability for readiness probes.
func (r *EventRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *EventRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

func isSlugViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && (pqErr.Constraint == "" || pqErr.Constraint == slugConstraintName)
}
