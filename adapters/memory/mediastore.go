package memory

import (
	"context"
	"io"
	"sync"

	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// MediaStore is an in-memory implementation of ports.MediaStore. File
// contents are discarded; only metadata is kept.
type MediaStore struct {
	mu    sync.RWMutex
	idgen ports.IDGenerator
	clock ports.Clock
	items map[string][]ports.MediaItem // by entity ID, insertion order
}

// NewMediaStore creates an in-memory media store.
func NewMediaStore(idgen ports.IDGenerator, clock ports.Clock) *MediaStore {
	return &MediaStore{
		idgen: idgen,
		clock: clock,
		items: make(map[string][]ports.MediaItem),
	}
}

// Fetch returns one page of the entity's media in a collection.
func (s *MediaStore) Fetch(ctx context.Context, e resource.Entity, collection string, page, perPage int) (ports.MediaPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []ports.MediaItem
	for _, item := range s.items[e.EntityID()] {
		if item.Collection == collection {
			all = append(all, item)
		}
	}

	result := ports.MediaPage{Total: len(all), Page: page, PerPage: perPage, Items: []ports.MediaItem{}}
	offset := (page - 1) * perPage
	if offset < len(all) {
		end := offset + perPage
		if end > len(all) {
			end = len(all)
		}
		result.Items = append(result.Items, all[offset:end]...)
	}
	return result, nil
}

// Attach stores a new media item on the entity.
func (s *MediaStore) Attach(ctx context.Context, e resource.Entity, upload ports.MediaUpload) (ports.MediaItem, error) {
	size := int64(0)
	if upload.Content != nil {
		n, err := io.Copy(io.Discard, upload.Content)
		if err != nil {
			return ports.MediaItem{}, err
		}
		size = n
	}

	item := ports.MediaItem{
		ID:         s.idgen.New(),
		Collection: upload.Collection,
		FileName:   upload.FileName,
		MimeType:   upload.MimeType,
		Size:       size,
		CreatedAt:  s.clock.Now(),
	}

	s.mu.Lock()
	s.items[e.EntityID()] = append(s.items[e.EntityID()], item)
	s.mu.Unlock()

	return item, nil
}

// Detach removes a media item. A second detach of the same id returns
// ports.ErrMediaNotFound.
func (s *MediaStore) Detach(ctx context.Context, e resource.Entity, mediaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items[e.EntityID()]
	for i, item := range items {
		if item.ID == mediaID {
			s.items[e.EntityID()] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ports.ErrMediaNotFound
}

// Count returns the number of items attached to an entity (for testing).
func (s *MediaStore) Count(entityID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items[entityID])
}

// Ensure interface compliance.
var _ ports.MediaStore = (*MediaStore)(nil)
