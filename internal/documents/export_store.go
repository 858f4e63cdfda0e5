package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

const exportKeyPrefix = "pos:export:"

// Export states.
const (
	ExportPending = "pending"
	ExportReady   = "ready"
	ExportFailed  = "failed"
)

var (
	// ErrExportNotFound is returned for unknown or expired export ids.
	ErrExportNotFound = fmt.Errorf("documents: export %w", httpx.ErrNotFound)
	// ErrExportPending is returned while the export is still queued.
	ErrExportPending = fmt.Errorf("documents: export %w", httpx.ErrNotReady)
	// ErrExportFailed is returned when the background render failed.
	ErrExportFailed = errors.New("documents: export failed")
)

// ExportStore keeps rendered exports in Redis hashes until they expire.
type ExportStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExportStore builds the store. A non-positive ttl defaults to one hour.
func NewExportStore(client *redis.Client, ttl time.Duration) *ExportStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ExportStore{client: client, ttl: ttl}
}

func exportKey(id string) string { return exportKeyPrefix + id }

// MarkPending records a queued export.
func (s *ExportStore) MarkPending(ctx context.Context, id string, kind Kind) error {
	return s.write(ctx, id, map[string]any{
		"status": ExportPending,
		"kind":   string(kind),
	})
}

// Save stores a finished document.
func (s *ExportStore) Save(ctx context.Context, id string, doc Document) error {
	return s.write(ctx, id, map[string]any{
		"status":       ExportReady,
		"kind":         string(doc.Kind),
		"file_name":    doc.FileName,
		"content_type": doc.ContentType,
		"pages":        doc.Pages,
		"body":         doc.Body,
	})
}

// Fail records a failed export with its reason.
func (s *ExportStore) Fail(ctx context.Context, id string, kind Kind, reason string) error {
	return s.write(ctx, id, map[string]any{
		"status": ExportFailed,
		"kind":   string(kind),
		"error":  reason,
	})
}

func (s *ExportStore) write(ctx context.Context, id string, fields map[string]any) error {
	key := exportKey(id)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("documents: store export %s: %w", id, err)
	}
	return nil
}

// Load returns a finished export.
func (s *ExportStore) Load(ctx context.Context, id string) (Document, error) {
	fields, err := s.client.HGetAll(ctx, exportKey(id)).Result()
	if err != nil {
		return Document{}, fmt.Errorf("documents: load export %s: %w", id, err)
	}
	if len(fields) == 0 {
		return Document{}, ErrExportNotFound
	}
	switch fields["status"] {
	case ExportPending:
		return Document{}, ErrExportPending
	case ExportFailed:
		return Document{}, fmt.Errorf("%w: %s", ErrExportFailed, fields["error"])
	}
	pages, _ := strconv.Atoi(fields["pages"])
	return Document{
		Kind:        Kind(fields["kind"]),
		FileName:    fields["file_name"],
		ContentType: fields["content_type"],
		Pages:       pages,
		Body:        []byte(fields["body"]),
	}, nil
}
