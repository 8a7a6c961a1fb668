// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/artpar/scaffold/domain/resource"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Authorization Port
// -----------------------------------------------------------------------------

// Gate decides allow/deny for an (actor, ability, subject) triple.
// The dispatcher consults it before every action execution; how policies
// are authored behind this contract is not this layer's concern.
type Gate interface {
	// Check returns true when the actor may exercise the ability on the
	// subject. The subject is an unsaved placeholder entity for create
	// flows.
	Check(ctx context.Context, actor resource.Actor, ability string, subject resource.Entity) bool
}

// -----------------------------------------------------------------------------
// Media Ports
// -----------------------------------------------------------------------------

// ErrMediaNotFound is returned by MediaStore.Detach when the media id is
// not attached to the entity. A second detach of the same id must report
// it rather than silently succeed.
var ErrMediaNotFound = errors.New("media not found")

// MediaItem is one binary asset attached to an entity.
type MediaItem struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// MediaPage is a paginated slice of media items.
type MediaPage struct {
	Items   []MediaItem `json:"data"`
	Total   int         `json:"total"`
	Page    int         `json:"current_page"`
	PerPage int         `json:"per_page"`
}

// MediaUpload is an inbound file to attach.
type MediaUpload struct {
	Collection string
	FileName   string
	MimeType   string
	Content    io.Reader
}

// MediaStore persists binary assets attached to entities. The dispatcher
// never touches storage itself; it only guarantees that these calls occur
// strictly after the authorization gate.
type MediaStore interface {
	// Fetch returns one page of the entity's media in a collection.
	Fetch(ctx context.Context, e resource.Entity, collection string, page, perPage int) (MediaPage, error)

	// Attach stores a new media item on the entity.
	Attach(ctx context.Context, e resource.Entity, upload MediaUpload) (MediaItem, error)

	// Detach removes a media item. Returns ErrMediaNotFound when the id
	// is not (or no longer) attached to the entity.
	Detach(ctx context.Context, e resource.Entity, mediaID string) error
}

// -----------------------------------------------------------------------------
// Search Port
// -----------------------------------------------------------------------------

// SearchStore answers reference-picker lookups against named entity
// tables. Unknown entity types or columns yield empty results, not
// errors.
type SearchStore interface {
	// ByKey returns at most one (id, label) pair whose primary key
	// equals key, labelled by column.
	ByKey(ctx context.Context, entityType, column string, key int64) ([]resource.Ref, error)

	// ByColumn returns up to limit (id, label) pairs whose column
	// contains term as a case-insensitive substring, in natural order.
	ByColumn(ctx context.Context, entityType, column, term string, limit int) ([]resource.Ref, error)
}

// -----------------------------------------------------------------------------
// Navigation & Messages Ports
// -----------------------------------------------------------------------------

// TargetResolver builds navigation targets for redirect outcomes. Target
// construction is a transport detail; the dispatcher only compares and
// forwards the opaque strings.
type TargetResolver interface {
	// View is the canonical target showing one entity.
	View(module, id string) string

	// Listing is the canonical target showing the module's collection.
	Listing(module string) string
}

// MessageCatalog resolves message keys to localized user-facing text.
type MessageCatalog interface {
	// Lookup returns the text for a key, falling back to the key itself.
	Lookup(key string) string
}
