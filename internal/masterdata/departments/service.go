package departments

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Department, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Department, error) {
	if id <= 0 {
		return Department{}, errors.New("invalid department ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form DepartmentForm) (Department, error) {
	d := fromForm(form)
	if err := validate(d); err != nil {
		return Department{}, err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Update(ctx context.Context, id int64, form DepartmentForm) error {
	if id <= 0 {
		return errors.New("invalid department ID")
	}
	d := fromForm(form)
	if err := validate(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, d)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid department ID")
	}
	return s.repo.Delete(ctx, id)
}

func validate(d Department) error {
	if strings.TrimSpace(d.Code) == "" {
		return errors.New("department code is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("department name is required")
	}
	return nil
}

func fromForm(form DepartmentForm) Department {
	return Department{
		Code:        strings.ToUpper(strings.TrimSpace(form.Code)),
		Name:        strings.TrimSpace(form.Name),
		Description: strings.TrimSpace(form.Description),
		IsActive:    form.IsActive,
	}
}
