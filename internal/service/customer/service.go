package customer

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"favorites-catalog/internal/domain"
	"favorites-catalog/internal/pagination"
	custrepo "favorites-catalog/internal/repository/customer"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service handles customer registration and maintenance.
type Service struct {
	repo            custrepo.Repository
	defaultPageSize int
}

func New(repo custrepo.Repository, defaultPageSize int) *Service {
	if defaultPageSize <= 0 {
		defaultPageSize = 10
	}
	return &Service{repo: repo, defaultPageSize: defaultPageSize}
}

// Input carries the fields of a new customer.
type Input struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateInput carries a partial update; nil fields keep their stored value.
type UpdateInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	c := domain.Customer{
		Name:  strings.TrimSpace(in.Name),
		Email: normalizeEmail(in.Email),
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, c.Email); err == nil {
		return nil, domain.NewConflictError("email already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	created, err := s.repo.Create(ctx, c)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.NewConflictError("email already exists")
	}
	return created, err
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("customer not found")
		}
		return nil, err
	}
	return c, nil
}

// Update merges in into the stored customer and re-validates the result.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Customer, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if in.Name != nil {
		merged.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		merged.Email = normalizeEmail(*in.Email)
	}
	if err := validateCustomer(merged); err != nil {
		return nil, err
	}

	if merged.Email != current.Email {
		other, err := s.repo.GetByEmail(ctx, merged.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, domain.NewConflictError("email already registered")
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, merged)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return nil, domain.NewConflictError("email already registered")
	case errors.Is(err, domain.ErrNotFound):
		return nil, domain.NewNotFoundError("customer not found")
	}
	return updated, err
}

func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.NewValidationError("id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewNotFoundError("customer not found")
		}
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, page, size int) (domain.Page[domain.Customer], error) {
	p, err := pagination.Parse(page, size, s.defaultPageSize)
	if err != nil {
		return domain.Page[domain.Customer]{}, err
	}
	customers, total, err := s.repo.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		return domain.Page[domain.Customer]{}, err
	}
	return pagination.NewPage(customers, p, total), nil
}

// validateCustomer reports the first failing rule as a ValidationError.
func validateCustomer(c domain.Customer) error {
	checks := []error{
		validation.Validate(c.Name, validation.Required.Error("name is required")),
		validation.Validate(c.Email, validation.Required.Error("email is required")),
		validation.Validate(c.Email, validation.Match(emailPattern).Error("invalid email format")),
	}
	for _, err := range checks {
		if err != nil {
			return domain.NewValidationError(err.Error())
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
