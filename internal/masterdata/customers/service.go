package customers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, errors.New("invalid customer ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form CustomerForm) (Customer, error) {
	c := fromForm(form)
	if err := validate(c); err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, form CustomerForm) error {
	if id <= 0 {
		return errors.New("invalid customer ID")
	}
	c := fromForm(form)
	if err := validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid customer ID")
	}
	return s.repo.Delete(ctx, id)
}

func validate(c Customer) error {
	if strings.TrimSpace(c.Code) == "" {
		return errors.New("customer code is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("customer name is required")
	}
	return nil
}

func fromForm(form CustomerForm) Customer {
	return Customer{
		Code:     strings.TrimSpace(form.Code),
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(strings.ToLower(form.Email)),
		Phone:    strings.TrimSpace(form.Phone),
		Address:  strings.TrimSpace(form.Address),
		City:     strings.TrimSpace(form.City),
		IsActive: form.IsActive,
	}
}
