package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/devevent-api/internal/models"
	appErrors "github.com/noah-isme/devevent-api/pkg/errors"
)

type slugSetStub struct {
	owners  map[string]string
	queries []string
	err     error
}

func newSlugSetStub(owned map[string]string) *slugSetStub {
	if owned == nil {
		owned = map[string]string{}
	}
	return &slugSetStub{owners: owned}
}

func (s *slugSetStub) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	s.queries = append(s.queries, slug)
	if s.err != nil {
		return false, s.err
	}
	owner, ok := s.owners[slug]
	return ok && owner != excludeID, nil
}

func newCandidate() *models.Event {
	return &models.Event{ID: "evt-new", Title: "Go Meetup", Date: "March 15, 2025", Time: "6:30 PM"}
}

func TestEventLifecycleApplyNewRecord(t *testing.T) {
	lookup := newSlugSetStub(nil)
	lc := NewEventLifecycle(lookup)

	evt := newCandidate()
	require.NoError(t, lc.Apply(context.Background(), evt, nil))

	assert.Equal(t, "go-meetup", evt.Slug)
	assert.Equal(t, "2025-03-15", evt.Date)
	assert.Equal(t, "18:30", evt.Time)
	assert.Equal(t, []string{"go-meetup"}, lookup.queries)
}

func TestEventLifecycleSequentialSuffixes(t *testing.T) {
	lookup := newSlugSetStub(nil)
	lc := NewEventLifecycle(lookup)

	want := []string{"go-meetup", "go-meetup-1", "go-meetup-2", "go-meetup-3"}
	for i, expected := range want {
		evt := newCandidate()
		evt.ID = fmt.Sprintf("evt-%d", i)
		require.NoError(t, lc.Apply(context.Background(), evt, nil))
		require.Equal(t, expected, evt.Slug)
		lookup.owners[evt.Slug] = evt.ID
	}
}

func TestEventLifecycleExcludesSelf(t *testing.T) {
	lookup := newSlugSetStub(map[string]string{"go-meetup": "evt-new"})
	lc := NewEventLifecycle(lookup)

	slug, err := lc.ResolveSlug(context.Background(), "Go Meetup", "evt-new")
	require.NoError(t, err)
	assert.Equal(t, "go-meetup", slug)
}

func TestEventLifecycleEmptyBaseSlug(t *testing.T) {
	lookup := newSlugSetStub(map[string]string{"": "evt-a"})
	lc := NewEventLifecycle(lookup)

	slug, err := lc.ResolveSlug(context.Background(), "!!!", "evt-b")
	require.NoError(t, err)
	assert.Equal(t, "-1", slug)
}

func TestEventLifecycleSkipsUnchangedFields(t *testing.T) {
	lookup := newSlugSetStub(nil)
	lc := NewEventLifecycle(lookup)

	prior := &models.Event{ID: "evt-1", Title: "Go Meetup", Slug: "go-meetup", Date: "2025-03-15", Time: "18:30"}
	evt := *prior
	evt.Time = "7:00 PM"

	require.NoError(t, lc.Apply(context.Background(), &evt, prior))
	assert.Equal(t, "go-meetup", evt.Slug)
	assert.Equal(t, "2025-03-15", evt.Date)
	assert.Equal(t, "19:00", evt.Time)
	assert.Empty(t, lookup.queries)
}

func TestEventLifecycleFailureLeavesCandidateUntouched(t *testing.T) {
	lc := NewEventLifecycle(newSlugSetStub(nil))

	evt := newCandidate()
	evt.Time = "25:61"
	err := lc.Apply(context.Background(), evt, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTimeFormat))
	assert.Empty(t, evt.Slug)
	assert.Equal(t, "March 15, 2025", evt.Date)

	evt = newCandidate()
	evt.Date = "not-a-date"
	err = lc.Apply(context.Background(), evt, nil)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidDateFormat))
	assert.Equal(t, "6:30 PM", evt.Time)
}

func TestEventLifecycleLookupErrorsAndCancellation(t *testing.T) {
	lookup := newSlugSetStub(nil)
	lookup.err = errors.New("db down")
	lc := NewEventLifecycle(lookup)

	err := lc.Apply(context.Background(), newCandidate(), nil)
	require.ErrorContains(t, err, "db down")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewEventLifecycle(newSlugSetStub(nil)).ResolveSlug(ctx, "Go Meetup", "")
	require.ErrorIs(t, err, context.Canceled)
}
