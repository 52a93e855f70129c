package registry

import (
	"context"

	"registra/internal/types"
)

// CompanyView is the public shape of a company. Created stays internal.
type CompanyView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type RegisterResult struct {
	ID string `json:"id"`
}

// UpdateResult confirms what changed: the record before and after the merge.
type UpdateResult struct {
	Old CompanyView `json:"old"`
	New CompanyView `json:"new"`
}

type RemoveResult struct {
	Removed CompanyView `json:"removed"`
}

// Service is the public operation surface consumed by the transport layer.
// It carries no state; it translates coordinator outcomes into response
// views and nothing else.
type Service struct {
	co *Coordinator
}

func NewService(co *Coordinator) *Service {
	return &Service{co: co}
}

func (s *Service) Register(ctx context.Context, draft types.CompanyDraft) (RegisterResult, error) {
	c, err := s.co.Register(ctx, draft)
	if err != nil {
		return RegisterResult{}, err
	}
	return RegisterResult{ID: c.ID}, nil
}

func (s *Service) FetchOne(ctx context.Context, id string) (CompanyView, error) {
	c, err := s.co.FetchOne(ctx, id)
	if err != nil {
		return CompanyView{}, err
	}
	return viewOf(c), nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]CompanyView, error) {
	docs, err := s.co.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	views := make([]CompanyView, 0, len(docs))
	for _, d := range docs {
		views = append(views, CompanyView{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			URL:         d.URL,
		})
	}
	return views, nil
}

func (s *Service) Update(ctx context.Context, id string, patch types.CompanyPatch) (UpdateResult, error) {
	prev, updated, err := s.co.Update(ctx, id, patch)
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Old: viewOf(prev), New: viewOf(updated)}, nil
}

func (s *Service) Remove(ctx context.Context, id string) (RemoveResult, error) {
	removed, err := s.co.Remove(ctx, id)
	if err != nil {
		return RemoveResult{}, err
	}
	return RemoveResult{Removed: viewOf(removed)}, nil
}

func viewOf(c types.Company) CompanyView {
	return CompanyView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		URL:         c.URL,
	}
}
