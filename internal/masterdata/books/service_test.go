package books

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-erp/inkwell/internal/masterdata/shared"
	internalShared "github.com/inkwell-erp/inkwell/internal/shared"
)

type memoryBookRepo struct {
	books  map[int64]Book
	nextID int64
}

func newMemoryBookRepo() *memoryBookRepo {
	return &memoryBookRepo{books: make(map[int64]Book)}
}

func (r *memoryBookRepo) List(ctx context.Context, filters shared.ListFilters) ([]Book, int, error) {
	var out []Book
	for _, b := range r.books {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (r *memoryBookRepo) Get(ctx context.Context, id int64) (Book, error) {
	b, ok := r.books[id]
	if !ok {
		return Book{}, internalShared.ErrNotFound
	}
	return b, nil
}

func (r *memoryBookRepo) Create(ctx context.Context, book Book) (Book, error) {
	for _, existing := range r.books {
		if existing.ISBN == book.ISBN {
			return Book{}, internalShared.ErrDuplicate
		}
	}
	r.nextID++
	book.ID = r.nextID
	r.books[book.ID] = book
	return book, nil
}

func (r *memoryBookRepo) Update(ctx context.Context, id int64, book Book) error {
	if _, ok := r.books[id]; !ok {
		return internalShared.ErrNotFound
	}
	book.ID = id
	r.books[id] = book
	return nil
}

func (r *memoryBookRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.books[id]; !ok {
		return internalShared.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func validForm() BookForm {
	return BookForm{
		ISBN:         "9780140449136",
		Title:        "Bleak House",
		Author:       "Homer",
		PublisherID:  1,
		DepartmentID: 2,
		Price:        12.5,
		Cost:         7.0,
		IsActive:     true,
	}
}

func TestCreateBook(t *testing.T) {
	svc := NewService(newMemoryBookRepo())
	book, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, int64(1), book.ID)
	require.Equal(t, "Bleak House", book.Title)
}

func TestCreateBookDuplicateISBN(t *testing.T) {
	svc := NewService(newMemoryBookRepo())
	_, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validForm())
	require.ErrorIs(t, err, internalShared.ErrDuplicate)
}

func TestCreateBookPriceBelowCost(t *testing.T) {
	svc := NewService(newMemoryBookRepo())
	form := validForm()
	form.Price = 5
	form.Cost = 9
	_, err := svc.Create(context.Background(), form)
	require.Error(t, err)
}

func TestUpdateMissingBook(t *testing.T) {
	svc := NewService(newMemoryBookRepo())
	err := svc.Update(context.Background(), 42, validForm())
	require.ErrorIs(t, err, internalShared.ErrNotFound)
}

func TestCreateBookTrimsFields(t *testing.T) {
	svc := NewService(newMemoryBookRepo())
	form := validForm()
	form.Title = "  Bleak House  "
	book, err := svc.Create(context.Background(), form)
	require.NoError(t, err)
	require.Equal(t, "Bleak House", book.Title)
}
