package publishers

import (
	"context"
	"errors"
	"strings"

	"github.com/inkwell-erp/inkwell/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Publisher, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Publisher, error) {
	if id <= 0 {
		return Publisher{}, errors.New("invalid publisher ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form PublisherForm) (Publisher, error) {
	p := fromForm(form)
	if strings.TrimSpace(p.Name) == "" {
		return Publisher{}, errors.New("publisher name is required")
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int64, form PublisherForm) error {
	if id <= 0 {
		return errors.New("invalid publisher ID")
	}
	p := fromForm(form)
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("publisher name is required")
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid publisher ID")
	}
	return s.repo.Delete(ctx, id)
}

func fromForm(form PublisherForm) Publisher {
	return Publisher{
		Name:     strings.TrimSpace(form.Name),
		Country:  strings.TrimSpace(form.Country),
		Website:  strings.TrimSpace(form.Website),
		IsActive: form.IsActive,
	}
}
