package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/devevent-api/internal/models"
)

// SlugLookup reports whether a slug is already held by an event other than
// excludeID.
type SlugLookup interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// EventLifecycle derives the canonical slug, date and time of an event right
// before it is persisted. It is the only component allowed to set them.
type EventLifecycle struct {
	lookup SlugLookup
}

// NewEventLifecycle constructs the lifecycle controller.
func NewEventLifecycle(lookup SlugLookup) *EventLifecycle {
	return &EventLifecycle{lookup: lookup}
}

// Apply assigns slug, date and time on candidate. prior is the stored version
// of the record, or nil for a new one; fields whose source value did not
// change against prior are left alone. On error candidate is not modified.
func (l *EventLifecycle) Apply(ctx context.Context, candidate *models.Event, prior *models.Event) error {
	if candidate == nil {
		return fmt.Errorf("event lifecycle: nil candidate")
	}
	isNew := prior == nil

	slug := candidate.Slug
	if isNew || candidate.Title != prior.Title {
		resolved, err := l.ResolveSlug(ctx, candidate.Title, candidate.ID)
		if err != nil {
			return err
		}
		slug = resolved
	}

	date := candidate.Date
	if isNew || candidate.Date != prior.Date {
		normalized, err := NormalizeDate(candidate.Date)
		if err != nil {
			return err
		}
		date = normalized
	}

	clock := candidate.Time
	if isNew || candidate.Time != prior.Time {
		normalized, err := NormalizeTime(candidate.Time)
		if err != nil {
			return err
		}
		clock = normalized
	}

	candidate.Slug = slug
	candidate.Date = date
	candidate.Time = clock
	return nil
}

// ResolveSlug returns the first of base, base-1, base-2, ... that no other
// event holds. The check is advisory; the store's unique index is the
// authority and callers re-resolve when an insert still collides.
func (l *EventLifecycle) ResolveSlug(ctx context.Context, title, excludeID string) (string, error) {
	base := GenerateSlug(title)
	candidate := base
	for counter := 1; ; counter++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := l.lookup.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
