package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/customers-api/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool (and pgx.Tx) the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const customerColumns = `id, first_name, last_name, preferred_name, date_of_birth`

// errCustomerNoRows carries the "table:<name>:" marker sqlerr.HandleError
// uses to name the missing entity.
var errCustomerNoRows = fmt.Errorf("table:customers: %w", pgx.ErrNoRows)

// CustomerRepository persists customers in the customers table.
type CustomerRepository struct {
	db DBTX
}

// NewCustomerRepository creates a repository over db.
func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func scanCustomer(row pgx.CollectableRow) (model.Customer, error) {
	var (
		c   model.Customer
		dob time.Time
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PreferredName, &dob); err != nil {
		return model.Customer{}, err
	}
	c.DateOfBirth = model.DateOf(dob)
	return c, nil
}

// Save inserts c when it has no id and updates the existing row otherwise.
// It returns the stored row; updating a missing id returns a no-rows error.
func (r *CustomerRepository) Save(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if c.ID == 0 {
		rows, err = r.db.Query(ctx, `
			INSERT INTO customers (first_name, last_name, preferred_name, date_of_birth)
			VALUES ($1, $2, $3, $4)
			RETURNING `+customerColumns,
			c.FirstName, c.LastName, c.PreferredName, c.DateOfBirth.Time,
		)
	} else {
		rows, err = r.db.Query(ctx, `
			UPDATE customers
			SET first_name = $2,
			    last_name = $3,
			    preferred_name = $4,
			    date_of_birth = $5,
			    updated_at = now()
			WHERE id = $1
			RETURNING `+customerColumns,
			c.ID, c.FirstName, c.LastName, c.PreferredName, c.DateOfBirth.Time,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	saved, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errCustomerNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	return &saved, nil
}

// FindAll returns every customer ordered by id.
func (r *CustomerRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	customers, err := pgx.CollectRows(rows, scanCustomer)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, nil
}

// FindByID returns the customer with id, or nil without an error when no
// such row exists.
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	customer, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &customer, nil
}

// ExistsByID reports whether a customer with id exists.
func (r *CustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer: %w", err)
	}
	return exists, nil
}

// DeleteByID permanently removes the customer with id.
func (r *CustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errCustomerNoRows
	}
	return nil
}
