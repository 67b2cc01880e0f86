package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-erp/inkwell/internal/masterdata/shared"
	internalShared "github.com/inkwell-erp/inkwell/internal/shared"
)

type memoryCustomerRepo struct {
	customers map[int64]Customer
	nextID    int64
}

func newMemoryCustomerRepo() *memoryCustomerRepo {
	return &memoryCustomerRepo{customers: make(map[int64]Customer)}
}

func (r *memoryCustomerRepo) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	var out []Customer
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *memoryCustomerRepo) Get(ctx context.Context, id int64) (Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, internalShared.ErrNotFound
	}
	return c, nil
}

func (r *memoryCustomerRepo) Create(ctx context.Context, c Customer) (Customer, error) {
	for _, existing := range r.customers {
		if existing.Code == c.Code {
			return Customer{}, internalShared.ErrDuplicate
		}
	}
	r.nextID++
	c.ID = r.nextID
	r.customers[c.ID] = c
	return c, nil
}

func (r *memoryCustomerRepo) Update(ctx context.Context, id int64, c Customer) error {
	if _, ok := r.customers[id]; !ok {
		return internalShared.ErrNotFound
	}
	c.ID = id
	r.customers[id] = c
	return nil
}

func (r *memoryCustomerRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.customers[id]; !ok {
		return internalShared.ErrNotFound
	}
	delete(r.customers, id)
	return nil
}

func TestCreateCustomerNormalizesFields(t *testing.T) {
	svc := NewService(newMemoryCustomerRepo())
	c, err := svc.Create(context.Background(), CustomerForm{
		Code:  " C-001 ",
		Name:  "  Ana Lima ",
		Email: "Ana@Example.COM",
	})
	require.NoError(t, err)
	require.Equal(t, "C-001", c.Code)
	require.Equal(t, "Ana Lima", c.Name)
	require.Equal(t, "ana@example.com", c.Email)
}

func TestCreateCustomerDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryCustomerRepo())
	form := CustomerForm{Code: "C-001", Name: "Ana Lima"}
	_, err := svc.Create(context.Background(), form)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), form)
	require.ErrorIs(t, err, internalShared.ErrDuplicate)
}

func TestCreateCustomerMissingName(t *testing.T) {
	svc := NewService(newMemoryCustomerRepo())
	_, err := svc.Create(context.Background(), CustomerForm{Code: "C-001", Name: "   "})
	require.Error(t, err)
}

func TestDeleteMissingCustomer(t *testing.T) {
	svc := NewService(newMemoryCustomerRepo())
	err := svc.Delete(context.Background(), 9)
	require.ErrorIs(t, err, internalShared.ErrNotFound)
}
