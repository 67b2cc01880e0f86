package suppliers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, errors.New("invalid supplier ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form SupplierForm) (Supplier, error) {
	supplier := fromForm(form)
	if err := validate(supplier); err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, supplier)
}

func (s *Service) Update(ctx context.Context, id int64, form SupplierForm) error {
	if id <= 0 {
		return errors.New("invalid supplier ID")
	}
	supplier := fromForm(form)
	if err := validate(supplier); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, supplier)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid supplier ID")
	}
	return s.repo.Delete(ctx, id)
}

func validate(s Supplier) error {
	if strings.TrimSpace(s.Code) == "" {
		return errors.New("supplier code is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("supplier name is required")
	}
	if s.PaymentTerms < 0 {
		return errors.New("payment terms cannot be negative")
	}
	return nil
}

func fromForm(form SupplierForm) Supplier {
	return Supplier{
		Code:          strings.TrimSpace(form.Code),
		Name:          strings.TrimSpace(form.Name),
		ContactPerson: strings.TrimSpace(form.ContactPerson),
		Email:         strings.TrimSpace(strings.ToLower(form.Email)),
		Phone:         strings.TrimSpace(form.Phone),
		Address:       strings.TrimSpace(form.Address),
		PaymentTerms:  form.PaymentTerms,
		IsActive:      form.IsActive,
	}
}
