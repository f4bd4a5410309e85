package repository

import (
	"context"

	"github.com/deppfellow/customers-api/internal/model"
	"github.com/deppfellow/customers-api/internal/server"
)

// CustomerStore is the customer persistence contract. FindByID returns nil
// without an error when the id is unknown; Save and DeleteByID report an
// unknown id as a pgx.ErrNoRows error.
type CustomerStore interface {
	Save(ctx context.Context, c *model.Customer) (*model.Customer, error)
	FindAll(ctx context.Context) ([]model.Customer, error)
	FindByID(ctx context.Context, id int64) (*model.Customer, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
}

var (
	_ CustomerStore = (*CustomerRepository)(nil)
	_ CustomerStore = (*MemoryCustomerRepository)(nil)
)

// Repositories groups every repository so services receive one value.
type Repositories struct {
	Customer CustomerStore
}

// NewRepositories builds the repositories on top of the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Customer: NewCustomerRepository(s.DB.Pool),
	}
}

// NewMemoryRepositories backs every repository with process memory.
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Customer: NewMemoryCustomerRepository(),
	}
}
