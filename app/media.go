package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/artpar/scaffold/adapters/metrics"
	"github.com/artpar/scaffold/domain/outcome"
	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// DefaultMediaCollection is used when a request names no collection.
const DefaultMediaCollection = "default"

// MediaService exposes the media attachment flow: fetch, attach, detach.
// It owns no storage; it resolves the entity, enforces the gate, and
// delegates to the MediaStore strictly afterwards.
type MediaService struct {
	store    ports.MediaStore
	gate     ports.Gate
	pageSize int
	metrics  *metrics.Collector
	logger   zerolog.Logger
}

// MediaDeps contains dependencies for the media service. PageSize bounds
// Fetch pages; zero or negative falls back to 20. Metrics is optional.
type MediaDeps struct {
	Store    ports.MediaStore
	Gate     ports.Gate
	PageSize int
	Metrics  *metrics.Collector
	Logger   zerolog.Logger
}

// NewMediaService creates a media service.
func NewMediaService(deps MediaDeps) *MediaService {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &MediaService{
		store:    deps.Store,
		gate:     deps.Gate,
		pageSize: pageSize,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Fetch returns one page of an entity's media. Viewing media requires
// the "view" ability on the entity.
func (s *MediaService) Fetch(ctx context.Context, actor resource.Actor, mod resource.Module, id, collection string, page int) outcome.Outcome {
	if collection == "" {
		collection = DefaultMediaCollection
	}
	if page < 1 {
		page = 1
	}
	return s.observe("fetch", s.withEntity(ctx, actor, mod, id, "view", func(e resource.Entity) outcome.Outcome {
		pageData, err := s.store.Fetch(ctx, e, collection, page, s.pageSize)
		if err != nil {
			s.logger.Error().Err(err).Str("module", mod.Name()).Str("entity", id).Msg("media fetch failed")
			return outcome.Failure(outcome.FailureHandler, err.Error())
		}
		return outcome.Payload(pageData)
	}))
}

// Attach stores a new file on an entity. Attaching mutates the entity,
// so it requires the "update" ability.
func (s *MediaService) Attach(ctx context.Context, actor resource.Actor, mod resource.Module, id string, upload ports.MediaUpload) outcome.Outcome {
	if upload.Collection == "" {
		upload.Collection = DefaultMediaCollection
	}
	return s.observe("attach", s.withEntity(ctx, actor, mod, id, "update", func(e resource.Entity) outcome.Outcome {
		item, err := s.store.Attach(ctx, e, upload)
		if err != nil {
			s.logger.Error().Err(err).Str("module", mod.Name()).Str("entity", id).Msg("media attach failed")
			return outcome.Failure(outcome.FailureHandler, err.Error())
		}
		return outcome.Payload(item)
	}))
}

// Detach removes a media item from an entity, requiring the "update"
// ability. Detaching an id that is already gone reports NotFound.
func (s *MediaService) Detach(ctx context.Context, actor resource.Actor, mod resource.Module, id, mediaID string) outcome.Outcome {
	return s.observe("detach", s.withEntity(ctx, actor, mod, id, "update", func(e resource.Entity) outcome.Outcome {
		err := s.store.Detach(ctx, e, mediaID)
		if errors.Is(err, ports.ErrMediaNotFound) {
			return outcome.NotFound()
		}
		if err != nil {
			s.logger.Error().Err(err).Str("module", mod.Name()).Str("entity", id).Str("media", mediaID).Msg("media detach failed")
			return outcome.Failure(outcome.FailureHandler, err.Error())
		}
		return outcome.Payload(nil)
	}))
}

func (s *MediaService) observe(op string, o outcome.Outcome) outcome.Outcome {
	if s.metrics != nil {
		s.metrics.ObserveMediaOp(op, o.Label())
	}
	return o
}

// withEntity resolves the entity and enforces the gate before running fn.
func (s *MediaService) withEntity(ctx context.Context, actor resource.Actor, mod resource.Module, id, ability string, fn func(resource.Entity) outcome.Outcome) outcome.Outcome {
	e, err := mod.Find(ctx, id)
	if errors.Is(err, resource.ErrNotFound) {
		return outcome.NotFound()
	}
	if err != nil {
		s.logger.Error().Err(err).Str("module", mod.Name()).Str("entity", id).Msg("entity lookup failed")
		return outcome.Failure(outcome.FailureLookup, err.Error())
	}
	if !s.gate.Check(ctx, actor, ability, e) {
		return outcome.Unauthorized()
	}
	return fn(e)
}

// DetachFileHandler builds the built-in detachFile handler for a module:
// it removes the media id named by the request from the entity. The
// store's not-found error surfaces as resource.ErrNotFound so the
// dispatcher classifies a repeated detach as NotFound rather than a
// silent success.
func DetachFileHandler(store ports.MediaStore) resource.Handler {
	return func(ctx context.Context, e resource.Entity, req *resource.Request) (resource.Result, error) {
		if req.MediaID == "" {
			return resource.Result{}, resource.NewValidationError("media_id", "media id is required")
		}
		if err := store.Detach(ctx, e, req.MediaID); err != nil {
			if errors.Is(err, ports.ErrMediaNotFound) {
				return resource.Result{}, resource.ErrNotFound
			}
			return resource.Result{}, err
		}
		return resource.Detached(), nil
	}
}
