package registry

import (
	"context"
	"errors"

	"registra/internal/ports"
	"registra/internal/types"
)

// Coordinator orchestrates every multi-step operation across the primary
// store and the search index. It holds no state of its own; each call is a
// fresh run of the protocol.
//
// The one invariant that must never bend: the primary store is read or
// written strictly before the index is touched. The index may lag the
// primary store after a partial failure, never lead it. An index failure
// after a committed primary write does not change the caller-visible
// outcome; it is handed to the divergence reporter instead.
type Coordinator struct {
	companies ports.CompanyStore
	index     ports.SearchIndex
	reporter  *DivergenceReporter
}

func NewCoordinator(companies ports.CompanyStore, index ports.SearchIndex, reporter *DivergenceReporter) *Coordinator {
	return &Coordinator{companies: companies, index: index, reporter: reporter}
}

// Register creates a company from the draft. The FindByTitle pre-check is a
// fast path only; the store's own uniqueness claim decides concurrent races.
func (co *Coordinator) Register(ctx context.Context, draft types.CompanyDraft) (types.Company, error) {
	if fe := draft.Validate(); len(fe) > 0 {
		return types.Company{}, types.Err(types.ErrValidation, fe, "")
	}

	_, err := co.companies.FindByTitle(ctx, draft.Title)
	switch {
	case err == nil:
		return types.Company{}, types.Err(types.ErrDuplicate, nil, "company with title %q already exists", draft.Title)
	case errors.Is(err, types.ErrNotFound):
		// title unclaimed, proceed
	default:
		return types.Company{}, err
	}

	stored, err := co.companies.Insert(ctx, types.Company{
		Title:       draft.Title,
		Description: draft.Description,
		URL:         draft.URL,
		Created:     timeNow().Unix(),
	})
	if err != nil {
		return types.Company{}, err
	}

	// Primary is committed and authoritative from here on; the index write
	// is best-effort propagation.
	if err := co.index.Upsert(ctx, stored.Doc()); err != nil {
		co.reporter.Report(ctx, types.OpRegister, stored.Doc(), err)
	}
	return stored, nil
}

func (co *Coordinator) FetchOne(ctx context.Context, id string) (types.Company, error) {
	if err := types.ValidateID(id); err != nil {
		return types.Company{}, err
	}
	return co.companies.GetByID(ctx, id)
}

// List delegates entirely to the index. A registry that has never indexed a
// document legitimately has nothing to list, so a missing index is an empty
// result, not an error.
func (co *Coordinator) List(ctx context.Context, offset, limit int) ([]types.Document, error) {
	docs, err := co.index.QuerySorted(ctx, types.SortAsc, offset, limit)
	if err != nil {
		if errors.Is(err, types.ErrIndexMissing) {
			return []types.Document{}, nil
		}
		return nil, err
	}
	return docs, nil
}

// Update applies a partial-merge patch: only non-empty patch fields
// overwrite, everything else retains its stored value. Returns the record
// before and after the merge.
func (co *Coordinator) Update(ctx context.Context, id string, patch types.CompanyPatch) (prev, updated types.Company, err error) {
	if err := types.ValidateID(id); err != nil {
		return types.Company{}, types.Company{}, err
	}
	prev, err = co.companies.GetByID(ctx, id)
	if err != nil {
		return types.Company{}, types.Company{}, err
	}

	merged := prev
	if patch.Title != "" {
		merged.Title = patch.Title
	}
	if patch.Description != "" {
		merged.Description = patch.Description
	}
	if patch.URL != "" {
		merged.URL = patch.URL
	}

	updated, err = co.companies.Update(ctx, merged, prev.Title)
	if err != nil {
		return types.Company{}, types.Company{}, err
	}

	if err := co.index.Upsert(ctx, updated.Doc()); err != nil {
		co.reporter.Report(ctx, types.OpUpdate, updated.Doc(), err)
	}
	return prev, updated, nil
}

// Remove deletes from the primary store first, then from the index. The
// index delete is idempotent, so a record that never made it into the index
// does not fail the removal. Returns the removed record as confirmation.
func (co *Coordinator) Remove(ctx context.Context, id string) (types.Company, error) {
	if err := types.ValidateID(id); err != nil {
		return types.Company{}, err
	}
	prev, err := co.companies.GetByID(ctx, id)
	if err != nil {
		return types.Company{}, err
	}
	if err := co.companies.Delete(ctx, id, prev.Title); err != nil {
		return types.Company{}, err
	}
	if err := co.index.Delete(ctx, id); err != nil {
		co.reporter.Report(ctx, types.OpRemove, prev.Doc(), err)
	}
	return prev, nil
}
