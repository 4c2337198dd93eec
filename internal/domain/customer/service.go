package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loan-origination/internal/pkg/apperrors"
)

type CustomerService interface {
	// MatchCustomer finds an existing customer by name and mobile. Both
	// fields must match after normalization. A miss is a valid business
	// outcome signalled by (nil, nil), not an error.
	MatchCustomer(ctx context.Context, name, mobile string) (*Customer, error)

	GetCustomer(ctx context.Context, customerID string) (*Customer, error)

	CreateCustomer(ctx context.Context, name, mobile, city string) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   Repository
	logger *slog.Logger
}

func NewCustomerService(repo Repository, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	return &customerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) MatchCustomer(ctx context.Context, name, mobile string) (*Customer, error) {
	normName := NormalizeName(name)
	normMobile := NormalizeMobile(mobile)
	if normName == "" || normMobile == "" {
		return nil, apperrors.NewValidationError("identity", "name and mobile are required for matching")
	}

	cust, err := s.repo.FindByNormalized(ctx, normName, normMobile)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "No customer matched", "name", normName)
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Customer match lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("failed to match customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Customer matched", "customerID", cust.CustomerID)
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID string) (*Customer, error) {
	cust, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s not found", apperrors.ErrNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to get customer", "customerID", customerID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}
	return cust, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, name, mobile, city string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "customer name cannot be empty")
	}
	mobile = NormalizeMobile(mobile)
	if mobile == "" {
		return nil, apperrors.NewValidationError("mobile", "customer mobile cannot be empty")
	}

	now := time.Now()
	cust := &Customer{
		Name:      name,
		Mobile:    mobile,
		City:      strings.TrimSpace(city),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, cust)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create customer", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to create customer: %v", apperrors.ErrInternalServer, err)
	}

	s.logger.InfoContext(ctx, "Customer created", "customerID", created.CustomerID)
	return created, nil
}
