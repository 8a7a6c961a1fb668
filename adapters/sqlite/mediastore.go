package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/artpar/scaffold/domain/resource"
	"github.com/artpar/scaffold/ports"
)

// MediaStore is a SQLite implementation of ports.MediaStore. File
// contents are stored inline in the media table.
type MediaStore struct {
	db    *DB
	idgen ports.IDGenerator
	clock ports.Clock
}

// NewMediaStore creates a SQLite media store.
func NewMediaStore(db *DB, idgen ports.IDGenerator, clock ports.Clock) *MediaStore {
	return &MediaStore{db: db, idgen: idgen, clock: clock}
}

// Fetch returns one page of the entity's media in a collection, ordered
// by attachment time.
func (s *MediaStore) Fetch(ctx context.Context, e resource.Entity, collection string, page, perPage int) (ports.MediaPage, error) {
	result := ports.MediaPage{Page: page, PerPage: perPage, Items: []ports.MediaItem{}}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM media WHERE entity_id = ? AND collection = ?",
		e.EntityID(), collection,
	).Scan(&result.Total)
	if err != nil {
		return ports.MediaPage{}, fmt.Errorf("count media: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection, file_name, mime_type, size, created_at
		FROM media
		WHERE entity_id = ? AND collection = ?
		ORDER BY created_at, rowid
		LIMIT ? OFFSET ?`,
		e.EntityID(), collection, perPage, (page-1)*perPage,
	)
	if err != nil {
		return ports.MediaPage{}, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item ports.MediaItem
		if err := rows.Scan(&item.ID, &item.Collection, &item.FileName, &item.MimeType, &item.Size, &item.CreatedAt); err != nil {
			return ports.MediaPage{}, fmt.Errorf("scan media: %w", err)
		}
		result.Items = append(result.Items, item)
	}
	return result, rows.Err()
}

// Attach stores a new media item on the entity.
func (s *MediaStore) Attach(ctx context.Context, e resource.Entity, upload ports.MediaUpload) (ports.MediaItem, error) {
	var content []byte
	if upload.Content != nil {
		data, err := io.ReadAll(upload.Content)
		if err != nil {
			return ports.MediaItem{}, fmt.Errorf("read upload: %w", err)
		}
		content = data
	}

	item := ports.MediaItem{
		ID:         s.idgen.New(),
		Collection: upload.Collection,
		FileName:   upload.FileName,
		MimeType:   upload.MimeType,
		Size:       int64(len(content)),
		CreatedAt:  s.clock.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (id, entity_id, collection, file_name, mime_type, size, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, e.EntityID(), item.Collection, item.FileName, item.MimeType, item.Size, content, item.CreatedAt,
	)
	if err != nil {
		return ports.MediaItem{}, fmt.Errorf("insert media: %w", err)
	}
	return item, nil
}

// Detach removes a media item. A second detach of the same id returns
// ports.ErrMediaNotFound.
func (s *MediaStore) Detach(ctx context.Context, e resource.Entity, mediaID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM media WHERE id = ? AND entity_id = ?",
		mediaID, e.EntityID(),
	)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ports.ErrMediaNotFound
	}
	return nil
}

// Content returns the stored file bytes of a media item.
func (s *MediaStore) Content(ctx context.Context, mediaID string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx, "SELECT content FROM media WHERE id = ?", mediaID).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, ports.ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query media content: %w", err)
	}
	return content, nil
}

// Ensure interface compliance.
var _ ports.MediaStore = (*MediaStore)(nil)
