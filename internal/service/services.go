package service

import (
	"github.com/deppfellow/customers-api/internal/lib/job"
	"github.com/deppfellow/customers-api/internal/repository"
	"github.com/deppfellow/customers-api/internal/server"
)

type Services struct {
	Auth     *AuthService
	Job      *job.JobService
	Customer *CustomerService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var events CustomerEventPublisher
	if s.Job != nil {
		events = s.Job
	}

	return &Services{
		Auth:     NewAuthService(s),
		Job:      s.Job,
		Customer: NewCustomerService(s, repos.Customer, events),
	}, nil
}
