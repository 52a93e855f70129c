package ports

import (
	"context"
	"registra/internal/types"
)

// CompanyStore is the narrow interface to the durable, authoritative store.
// It is always consulted before the search index is touched.
type CompanyStore interface {
	// GetByID returns the company for id.
	// MUST return types.ErrNotFound if no record exists; a malformed-key
	// store error is reported as types.ErrNotFound as well, since callers
	// cannot act differently on the two.
	GetByID(ctx context.Context, id string) (types.Company, error)

	// FindByTitle returns the company holding the exact title.
	// MUST return types.ErrNotFound when the title is unclaimed.
	FindByTitle(ctx context.Context, title string) (types.Company, error)

	// Insert stores a new company and assigns its id. Uniqueness of the
	// title is enforced by the store itself; a losing concurrent insert
	// MUST surface as types.ErrDuplicate, field failures as
	// types.ErrValidation.
	Insert(ctx context.Context, c types.Company) (types.Company, error)

	// Update overwrites the record in place. prevTitle is the title the
	// record held before the update so the store can release the old
	// uniqueness claim when the title changed.
	Update(ctx context.Context, c types.Company, prevTitle string) (types.Company, error)

	// Delete removes the record and its title claim.
	Delete(ctx context.Context, id, title string) error
}

// DivergenceJournal persists "index write failed for id X after primary
// commit" events so a corrective re-index job can find them later.
type DivergenceJournal interface {
	Record(ctx context.Context, d types.Divergence) error
}
