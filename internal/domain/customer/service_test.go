package customer

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"loan-origination/internal/pkg/apperrors"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByNormalized(ctx context.Context, name, mobile string) (*Customer, error) {
	args := m.Called(ctx, name, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, customerID string) (*Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, cust *Customer) (*Customer, error) {
	args := m.Called(ctx, cust)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func TestNormalizeMobile(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizeMobile(" 98765 432-10 "))
	assert.Equal(t, "9876543210", NormalizeMobile("9876543210"))
}

func TestMatchCustomerNormalizesBeforeLookup(t *testing.T) {
	repo := new(MockRepository)
	svc := NewCustomerService(repo, logger)

	expected := &Customer{CustomerID: "CUST001", Name: "Ravi Kumar", Mobile: "9876543210", CreditScore: 760}
	repo.On("FindByNormalized", mock.Anything, "ravi kumar", "9876543210").Return(expected, nil)

	cust, err := svc.MatchCustomer(context.Background(), "  Ravi Kumar ", "98765-43210")
	assert.NoError(t, err)
	assert.Equal(t, expected, cust)
	repo.AssertExpectations(t)
}

func TestMatchCustomerMissIsNotAnError(t *testing.T) {
	repo := new(MockRepository)
	svc := NewCustomerService(repo, logger)

	repo.On("FindByNormalized", mock.Anything, "new person", "9999999999").Return(nil, apperrors.ErrNotFound)

	cust, err := svc.MatchCustomer(context.Background(), "New Person", "9999999999")
	assert.NoError(t, err)
	assert.Nil(t, cust)
}

func TestMatchCustomerRequiresBothFields(t *testing.T) {
	repo := new(MockRepository)
	svc := NewCustomerService(repo, logger)

	_, err := svc.MatchCustomer(context.Background(), "", "9999999999")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.MatchCustomer(context.Background(), "Someone", "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateCustomerValidatesInput(t *testing.T) {
	repo := new(MockRepository)
	svc := NewCustomerService(repo, logger)

	_, err := svc.CreateCustomer(context.Background(), "  ", "9876543210", "Pune")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	repo.AssertNotCalled(t, "Create")
}

func TestCreateCustomerPersists(t *testing.T) {
	repo := new(MockRepository)
	svc := NewCustomerService(repo, logger)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Customer) bool {
		return c.Name == "Asha Patel" && c.Mobile == "9812345678"
	})).Return(&Customer{CustomerID: "CUST042", Name: "Asha Patel", Mobile: "9812345678"}, nil)

	created, err := svc.CreateCustomer(context.Background(), "Asha Patel", "98123 45678", "Mumbai")
	assert.NoError(t, err)
	assert.Equal(t, "CUST042", created.CustomerID)
	repo.AssertExpectations(t)
}
