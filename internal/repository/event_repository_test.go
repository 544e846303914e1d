package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/devevent-api/internal/models"
)

var eventColumnNames = []string{"id", "title", "slug", "description", "overview", "image", "venue", "location", "date", "time",
	"mode", "audience", "agenda", "organizer", "tags", "created_at", "updated_at"}

type observerStub struct {
	labels []string
}

func (o *observerStub) ObserveDBQuery(label string, duration time.Duration) {
	o.labels = append(o.labels, label)
}

func newEventRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sampleEvent() *models.Event {
	return &models.Event{
		Title:       "Go Meetup",
		Slug:        "go-meetup",
		Description: "Monthly gophers",
		Overview:    "Talks and pizza",
		Image:       "https://cdn.example.com/devevent/a.png",
		Venue:       "Hall A",
		Location:    "Jakarta",
		Date:        "2025-03-15",
		Time:        "18:30",
		Mode:        models.EventModeOffline,
		Audience:    "Developers",
		Agenda:      []string{"Welcome", "Talk"},
		Organizer:   "Gophers ID",
		Tags:        []string{"go", "meetup"},
	}
}

func TestEventRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	observer := &observerStub{}
	repo := NewEventRepository(db, observer)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	evt := sampleEvent()
	require.NoError(t, repo.Create(context.Background(), evt))
	require.NotEmpty(t, evt.ID)
	require.False(t, evt.CreatedAt.IsZero())
	require.Equal(t, evt.CreatedAt, evt.UpdatedAt)
	require.Equal(t, []string{"events.create"}, observer.labels)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateDuplicateSlug(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db, nil)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "events_slug_key"})

	err := repo.Create(context.Background(), sampleEvent())
	require.ErrorIs(t, err, ErrDuplicateSlug)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "events_agenda_check"})
	err = repo.Create(context.Background(), sampleEvent())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrDuplicateSlug))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySlugExists(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1")).
		WithArgs("go-meetup", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1")).
		WithArgs("go-meetup-1", "evt-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.SlugExists(context.Background(), "go-meetup", "")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.SlugExists(context.Background(), "go-meetup-1", "evt-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryList(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db, nil)
	newer := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventColumnNames).
		AddRow("evt-2", "B", "b", "d", "o", "img", "v", "l", "2025-04-01", "10:00", "online", "a", "{Intro,Q&A}", "org", "{go}", newer, newer).
		AddRow("evt-1", "A", "a", "d", "o", "img", "v", "l", "2025-04-01", "09:00", "hybrid", "a", "{Intro}", "org", "{go,web}", older, older)
	mock.ExpectQuery(regexp.QuoteMeta("FROM events ORDER BY created_at DESC")).
		WillReturnRows(rows)

	events, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "evt-2", events[0].ID)
	require.Equal(t, []string{"Intro", "Q&A"}, events[0].Agenda)
	require.Equal(t, []string{"go", "web"}, events[1].Tags)
	require.Equal(t, models.EventModeHybrid, events[1].Mode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryGetBySlug(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db, nil)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE slug = $1")).
		WithArgs("go-meetup").
		WillReturnRows(sqlmock.NewRows(eventColumnNames).
			AddRow("evt-1", "Go Meetup", "go-meetup", "d", "o", "img", "v", "l", "2025-03-15", "18:30", "offline", "a", "{Welcome}", "org", "{go}", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM events WHERE slug = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	evt, err := repo.GetBySlug(context.Background(), "go-meetup")
	require.NoError(t, err)
	require.Equal(t, "Go Meetup", evt.Title)

	_, err = repo.GetBySlug(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
