package ports

import (
	"context"
	"registra/internal/types"
)

// SearchIndex is the narrow interface to the derived, queryable mirror.
// The primary store is the source of truth; the index only ever lags it.
type SearchIndex interface {
	// Upsert writes the document keyed by its id, replacing any prior
	// version (including its sort entry when the title changed).
	Upsert(ctx context.Context, doc types.Document) error

	// Delete removes the document. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// QuerySorted returns documents ordered by title. An index that has
	// never been written MUST be reported as types.ErrIndexMissing so the
	// caller can translate it into an empty result.
	QuerySorted(ctx context.Context, order types.SortOrder, offset, limit int) ([]types.Document, error)
}
