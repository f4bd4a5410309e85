package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/deppfellow/customers-api/internal/model"
)

// MemoryCustomerRepository is an in-process implementation of the customer
// store used by tests. Ids come from a counter and are never reused.
type MemoryCustomerRepository struct {
	mu        sync.RWMutex
	nextID    int64
	customers map[int64]model.Customer
}

// NewMemoryCustomerRepository returns an empty in-memory store.
func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{
		customers: make(map[int64]model.Customer),
	}
}

func cloneCustomer(c model.Customer) model.Customer {
	if c.PreferredName != nil {
		c.PreferredName = model.StringPtr(*c.PreferredName)
	}
	return c
}

func (r *MemoryCustomerRepository) Save(_ context.Context, c *model.Customer) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneCustomer(*c)
	if stored.ID == 0 {
		r.nextID++
		stored.ID = r.nextID
	} else if _, ok := r.customers[stored.ID]; !ok {
		return nil, errCustomerNoRows
	}

	r.customers[stored.ID] = stored

	out := cloneCustomer(stored)
	return &out, nil
}

func (r *MemoryCustomerRepository) FindAll(_ context.Context) ([]model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, cloneCustomer(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryCustomerRepository) FindByID(_ context.Context, id int64) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	out := cloneCustomer(c)
	return &out, nil
}

func (r *MemoryCustomerRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.customers[id]
	return ok, nil
}

func (r *MemoryCustomerRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[id]; !ok {
		return errCustomerNoRows
	}
	delete(r.customers, id)
	return nil
}
