// Package blob implements content storage for uploaded files. Bytes are
// chunked into rows of the backing database, GridFS-style, so the primary
// store remains the single source of truth for both records and content.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"linkup/internal/middleware"
	"linkup/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// chunkSize matches the GridFS default chunk size.
const chunkSize = 255 * 1024

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	ID          string
	ContentType string
	Size        int64
	Width       int
	Height      int
}

// Store is the content-addressable binary store used for post images and
// avatars. Implementations must never register an id for a failed write.
type Store interface {
	// Put persists the full content of r and returns the generated blob id.
	Put(ctx context.Context, r io.Reader, contentType string) (string, error)
	// PutImage validates content as an image, then stores it byte-for-byte
	// with the detected content type and dimensions.
	PutImage(ctx context.Context, content []byte) (string, error)
	// Open returns a streaming reader over the blob's bytes together with
	// its metadata. Read errors are terminal: the reader never silently
	// truncates into valid-looking partial content.
	Open(ctx context.Context, id string) (io.ReadCloser, *ObjectInfo, error)
	// Delete removes the blob. Deleting an absent id reports NotFound;
	// replace/delete flows treat that as already-absent.
	Delete(ctx context.Context, id string) error
	// Stat returns metadata without opening the content.
	Stat(ctx context.Context, id string) (*ObjectInfo, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a database-backed blob store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Put(ctx context.Context, r io.Reader, contentType string) (string, error) {
	return s.put(ctx, r, contentType, 0, 0)
}

func (s *gormStore) PutImage(ctx context.Context, content []byte) (string, error) {
	contentType, width, height, err := SniffImage(content)
	if err != nil {
		return "", err
	}
	return s.put(ctx, bytes.NewReader(content), contentType, width, height)
}

func (s *gormStore) put(ctx context.Context, r io.Reader, contentType string, width, height int) (string, error) {
	id := uuid.New().String()

	var size int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		buf := make([]byte, chunkSize)
		seq := 0
		for {
			n, readErr := io.ReadFull(r, buf)
			if n > 0 {
				chunk := models.BlobChunk{
					BlobID: id,
					Seq:    seq,
					Data:   append([]byte(nil), buf[:n]...),
				}
				if err := tx.Create(&chunk).Error; err != nil {
					return err
				}
				size += int64(n)
				seq++
			}
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				break
			}
			if readErr != nil {
				return readErr
			}
		}

		// Object row last: a visible id implies complete content.
		return tx.Create(&models.BlobObject{
			ID:          id,
			ContentType: contentType,
			Size:        size,
			Width:       width,
			Height:      height,
		}).Error
	})
	if err != nil {
		return "", models.NewStorageError(err)
	}

	middleware.BlobBytesStored.Add(float64(size))
	return id, nil
}

func (s *gormStore) Stat(ctx context.Context, id string) (*ObjectInfo, error) {
	var obj models.BlobObject
	if err := s.db.WithContext(ctx).First(&obj, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("File", id)
		}
		return nil, models.NewStorageError(err)
	}
	return &ObjectInfo{
		ID:          obj.ID,
		ContentType: obj.ContentType,
		Size:        obj.Size,
		Width:       obj.Width,
		Height:      obj.Height,
	}, nil
}

func (s *gormStore) Open(ctx context.Context, id string) (io.ReadCloser, *ObjectInfo, error) {
	info, err := s.Stat(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return &chunkReader{ctx: ctx, db: s.db, blobID: id, size: info.Size}, info, nil
}

func (s *gormStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.BlobObject{}, "id = ?", id)
		if res.Error != nil {
			return models.NewStorageError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("File", id)
		}
		if err := tx.Delete(&models.BlobChunk{}, "blob_id = ?", id).Error; err != nil {
			return models.NewStorageError(err)
		}
		return nil
	})
}

// chunkReader streams a blob chunk by chunk. A missing chunk or query
// failure surfaces as a read error, never as shortened content.
type chunkReader struct {
	ctx    context.Context
	db     *gorm.DB
	blobID string
	size   int64
	loaded int64
	seq    int
	buf    []byte
	done   bool
	closed bool
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errors.New("blob: read from closed reader")
	}
	for len(r.buf) == 0 {
		if r.done {
			return 0, io.EOF
		}
		var chunk models.BlobChunk
		err := r.db.WithContext(r.ctx).
			Where("blob_id = ? AND seq = ?", r.blobID, r.seq).
			First(&chunk).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// An absent chunk before the declared size is a torn blob
			// (e.g. a concurrent delete), never a clean end of stream.
			if r.loaded < r.size {
				return 0, fmt.Errorf("blob %s: missing chunk %d after %d of %d bytes",
					r.blobID, r.seq, r.loaded, r.size)
			}
			r.done = true
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("blob %s chunk %d: %w", r.blobID, r.seq, err)
		}
		r.buf = chunk.Data
		r.loaded += int64(len(chunk.Data))
		r.seq++
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *chunkReader) Close() error {
	r.closed = true
	r.buf = nil
	return nil
}
