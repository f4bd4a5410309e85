package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/customers-api/internal/errs"
	"github.com/deppfellow/customers-api/internal/lib/job"
	loggerPkg "github.com/deppfellow/customers-api/internal/logger"
	"github.com/deppfellow/customers-api/internal/model"
	"github.com/deppfellow/customers-api/internal/repository"
	"github.com/deppfellow/customers-api/internal/server"
	"github.com/jackc/pgx/v5"
)

var (
	customerNotFoundCode     = "CUSTOMER_NOT_FOUND"
	invalidPreferredNameCode = "INVALID_PREFERRED_NAME"

	// ErrCustomerNotFound is returned for any id with no stored customer.
	ErrCustomerNotFound = errs.NewNotFoundError("Customer not found", true, &customerNotFoundCode)

	// ErrInvalidPreferredName is returned when the new preferred name is
	// empty after trimming.
	ErrInvalidPreferredName = errs.NewBadRequestError(
		model.PreferredNameRequiredMessage, true, &invalidPreferredNameCode,
		[]errs.FieldError{{Field: "preferredName", Error: model.PreferredNameRequiredMessage}}, nil,
	)
)

// CustomerEventPublisher publishes customer lifecycle events.
type CustomerEventPublisher interface {
	EnqueueCustomerEvent(ctx context.Context, eventType string, customerID int64) error
}

type CustomerService struct {
	server *server.Server
	repo   repository.CustomerStore
	events CustomerEventPublisher
}

// NewCustomerService creates the service. events may be nil, in which case
// no lifecycle events are published.
func NewCustomerService(s *server.Server, repo repository.CustomerStore, events CustomerEventPublisher) *CustomerService {
	return &CustomerService{
		server: s,
		repo:   repo,
		events: events,
	}
}

// Create stores c under a freshly assigned id. Any id already set on c is
// discarded.
func (s *CustomerService) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	c.ID = 0

	saved, err := s.repo.Save(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.publish(ctx, job.TaskCustomerCreated, saved.ID)
	return saved, nil
}

// List returns every customer ordered by id. It never returns a nil slice.
func (s *CustomerService) List(ctx context.Context) ([]model.Customer, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	return customers, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// UpdatePreferredName validates name before looking the customer up, so
// a blank name is rejected even for an unknown id. The name is stored
// trimmed.
func (s *CustomerService) UpdatePreferredName(ctx context.Context, id int64, name string) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidPreferredName
	}

	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.PreferredName = model.StringPtr(name)

	updated, err := s.repo.Save(ctx, customer)
	if err != nil {
		// Deleted between the lookup and the save.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}

	s.publish(ctx, job.TaskCustomerPreferredNameUpdated, updated.ID)
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check customer %d: %w", id, err)
	}
	if !exists {
		return ErrCustomerNotFound
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer %d: %w", id, err)
	}

	s.publish(ctx, job.TaskCustomerDeleted, id)
	return nil
}

// publish never fails the caller; a lost event is only logged.
func (s *CustomerService) publish(ctx context.Context, eventType string, customerID int64) {
	if s.events == nil {
		return
	}

	if err := s.events.EnqueueCustomerEvent(ctx, eventType, customerID); err != nil {
		loggerPkg.FromContext(ctx, s.server.Logger).Warn().
			Err(err).
			Str("event", eventType).
			Int64("customer_id", customerID).
			Msg("failed to publish customer event")
	}
}
