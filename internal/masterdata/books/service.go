package books

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Book, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	if id <= 0 {
		return Book{}, errors.New("invalid book ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form BookForm) (Book, error) {
	book := fromForm(form)
	if err := s.validate(book); err != nil {
		return Book{}, err
	}
	return s.repo.Create(ctx, book)
}

func (s *Service) Update(ctx context.Context, id int64, form BookForm) error {
	if id <= 0 {
		return errors.New("invalid book ID")
	}
	book := fromForm(form)
	if err := s.validate(book); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, book)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid book ID")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(b Book) error {
	if strings.TrimSpace(b.ISBN) == "" {
		return errors.New("book ISBN is required")
	}
	if strings.TrimSpace(b.Title) == "" {
		return errors.New("book title is required")
	}
	if b.Price < b.Cost {
		return errors.New("book price must not be below cost")
	}
	return nil
}

func fromForm(form BookForm) Book {
	return Book{
		ISBN:         strings.TrimSpace(form.ISBN),
		Title:        strings.TrimSpace(form.Title),
		Author:       strings.TrimSpace(form.Author),
		PublisherID:  form.PublisherID,
		DepartmentID: form.DepartmentID,
		Price:        form.Price,
		Cost:         form.Cost,
		CoverURL:     strings.TrimSpace(form.CoverURL),
		IsActive:     form.IsActive,
	}
}
