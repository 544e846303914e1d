package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/devevent-api/internal/dto"
	"github.com/noah-isme/devevent-api/internal/models"
	"github.com/noah-isme/devevent-api/internal/repository"
	appErrors "github.com/noah-isme/devevent-api/pkg/errors"
	"github.com/noah-isme/devevent-api/pkg/jobs"
	"github.com/noah-isme/devevent-api/pkg/storage"
)

const (
	eventListCacheKey = "events:list"
	sniffLength       = 512
)

type eventRepository interface {
	SlugLookup
	Create(ctx context.Context, event *models.Event) error
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
}

type cleanupScheduler interface {
	Enqueue(job jobs.Job) error
}

// ImageUpload is the image part of an event submission.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// EventServiceConfig tunes event creation.
type EventServiceConfig struct {
	MediaFolder     string
	UploadTimeout   time.Duration
	PersistTimeout  time.Duration
	MaxImageBytes   int64
	AllowedMIMEs    []string
	SlugMaxAttempts int
	CacheTTL        time.Duration
}

// EventService implements event ingestion and listing.
type EventService struct {
	repo      eventRepository
	lifecycle *EventLifecycle
	media     storage.MediaStore
	cleanup   cleanupScheduler
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       EventServiceConfig
}

// NewEventService wires the service. cleanup, cache and metrics may be nil.
func NewEventService(repo eventRepository, media storage.MediaStore, cleanup cleanupScheduler, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg EventServiceConfig) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MediaFolder == "" {
		cfg.MediaFolder = "devevent"
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 30 * time.Second
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	if cfg.SlugMaxAttempts <= 0 {
		cfg.SlugMaxAttempts = 5
	}
	return &EventService{
		repo:      repo,
		lifecycle: NewEventLifecycle(repo),
		media:     media,
		cleanup:   cleanup,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Create validates the submission, uploads its image and stores the event.
// Nothing is stored when any step fails.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest, image *ImageUpload) (*models.Event, error) {
	event, err := s.create(ctx, req, image)
	if err != nil {
		s.metrics.RecordEventCreation(appErrors.FromError(err).Code)
		return nil, err
	}
	s.metrics.RecordEventCreation("OK")
	return event, nil
}

func (s *EventService) create(ctx context.Context, req dto.CreateEventRequest, image *ImageUpload) (*models.Event, error) {
	if image == nil || image.Body == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingImage, "")
	}

	req, err := normalizeCreateRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Overview:    req.Overview,
		Venue:       req.Venue,
		Location:    req.Location,
		Date:        req.Date,
		Time:        req.Time,
		Mode:        req.Mode,
		Audience:    req.Audience,
		Agenda:      req.Agenda,
		Organizer:   req.Organizer,
		Tags:        req.Tags,
	}
	if err := s.lifecycle.Apply(ctx, event, nil); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, appErrors.WrapAs(appErrors.ErrPersistence, err, "failed to resolve event slug")
	}

	obj, err := s.prepareImage(image)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.upload(ctx, obj)
	if err != nil {
		return nil, err
	}
	event.Image = uploaded.URL

	if err := s.persist(ctx, event); err != nil {
		s.scheduleCleanup(uploaded.Key)
		return nil, err
	}

	s.cache.Invalidate(ctx, eventListCacheKey)
	s.logger.Info("event created", zap.String("id", event.ID), zap.String("slug", event.Slug))
	return event, nil
}

func (s *EventService) prepareImage(image *ImageUpload) (storage.Object, error) {
	if s.cfg.MaxImageBytes > 0 && image.Size > s.cfg.MaxImageBytes {
		return storage.Object{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxImageBytes))
	}

	body := image.Body
	contentType := baseMediaType(image.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, sniffLength)
		n, err := io.ReadFull(body, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return storage.Object{}, appErrors.WrapAs(appErrors.ErrValidation, err, "image could not be read")
		}
		head = head[:n]
		contentType = baseMediaType(http.DetectContentType(head))
		body = io.MultiReader(bytes.NewReader(head), body)
	}
	if !s.mimeAllowed(contentType) {
		return storage.Object{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image type %s is not allowed", contentType))
	}

	return storage.Object{
		Folder:      s.cfg.MediaFolder,
		Filename:    image.Filename,
		ContentType: contentType,
		Size:        image.Size,
		Body:        body,
	}, nil
}

func (s *EventService) mimeAllowed(contentType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return strings.HasPrefix(contentType, "image/")
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

func (s *EventService) upload(ctx context.Context, obj storage.Object) (*storage.UploadResult, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.media.Upload(uploadCtx, obj)
	s.metrics.ObserveUpload(err == nil, time.Since(start))
	if err != nil {
		s.logger.Warn("image upload failed", zap.String("folder", obj.Folder), zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrUploadFailed, err, "")
	}
	if result == nil || result.URL == "" {
		return nil, appErrors.Clone(appErrors.ErrUploadFailed, "media host returned no url")
	}
	return result, nil
}

// persist inserts the event, re-deriving the slug whenever the unique index
// rejects it.
func (s *EventService) persist(ctx context.Context, event *models.Event) error {
	persistCtx, cancel := context.WithTimeout(ctx, s.cfg.PersistTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err := s.repo.Create(persistCtx, event)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateSlug) {
			s.logger.Error("event insert failed", zap.String("slug", event.Slug), zap.Error(err))
			return appErrors.WrapAs(appErrors.ErrPersistence, err, "")
		}
		s.metrics.RecordSlugCollision()
		if attempt >= s.cfg.SlugMaxAttempts {
			return appErrors.WrapAs(appErrors.ErrPersistence, err, "could not allocate a unique slug")
		}
		slug, err := s.lifecycle.ResolveSlug(persistCtx, event.Title, event.ID)
		if err != nil {
			return appErrors.WrapAs(appErrors.ErrPersistence, err, "")
		}
		s.logger.Debug("slug collided on insert", zap.String("previous", event.Slug), zap.String("next", slug), zap.Int("attempt", attempt))
		event.Slug = slug
	}
}

func (s *EventService) scheduleCleanup(key string) {
	if s.cleanup == nil || key == "" {
		return
	}
	if err := s.cleanup.Enqueue(jobs.Job{Type: MediaCleanupJobType, Payload: key}); err != nil {
		s.logger.Warn("orphaned image not scheduled for cleanup", zap.String("key", key), zap.Error(err))
	}
}

// List returns every event, newest first.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	var cached []models.Event
	if s.cache.Get(ctx, eventListCacheKey, &cached) {
		return cached, nil
	}

	events, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("list events failed", zap.Error(err))
		return nil, appErrors.Clone(appErrors.ErrInternal, "")
	}
	if events == nil {
		events = []models.Event{}
	}
	s.cache.Set(ctx, eventListCacheKey, events, s.cfg.CacheTTL)
	return events, nil
}

// GetBySlug returns a single event.
func (s *EventService) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

func normalizeCreateRequest(req dto.CreateEventRequest) (dto.CreateEventRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Overview = strings.TrimSpace(req.Overview)
	req.Venue = strings.TrimSpace(req.Venue)
	req.Location = strings.TrimSpace(req.Location)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Mode = models.EventMode(strings.ToLower(strings.TrimSpace(string(req.Mode))))
	req.Audience = strings.TrimSpace(req.Audience)
	req.Organizer = strings.TrimSpace(req.Organizer)

	agenda, err := expandList("agenda", req.Agenda)
	if err != nil {
		return req, err
	}
	tags, err := expandList("tags", req.Tags)
	if err != nil {
		return req, err
	}
	req.Agenda = agenda
	req.Tags = tags
	return req, nil
}

// expandList accepts either repeated form values or a single JSON array.
func expandList(field string, values []string) ([]string, error) {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(values[0]), &decoded); err != nil {
			return nil, appErrors.WrapAs(appErrors.ErrValidation, err, field+" must be a JSON array of strings")
		}
		values = decoded
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, strings.TrimSpace(value))
	}
	return out, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.WrapAs(appErrors.ErrValidation, err, "")
	}
	fields := make([]string, 0, len(fieldErrs))
	seen := make(map[string]struct{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := strings.ToLower(fe.StructField())
		if idx := strings.Index(name, "["); idx > 0 {
			name = name[:idx]
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		fields = append(fields, name)
	}
	return appErrors.WrapAs(appErrors.ErrValidation, err, "invalid fields: "+strings.Join(fields, ", "))
}

func baseMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return parsed
}
