package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/offer"
	"loan-origination/internal/domain/sanction"
	"loan-origination/internal/domain/underwriting"
	"loan-origination/internal/event"
	"loan-origination/internal/journey"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) MatchCustomer(ctx context.Context, name, mobile string) (*customer.Customer, error) {
	args := m.Called(ctx, name, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID string) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, name, mobile, city string) (*customer.Customer, error) {
	args := m.Called(ctx, name, mobile, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

type MockOfferService struct {
	mock.Mock
}

func (m *MockOfferService) OffersFor(ctx context.Context, customerID string) ([]offer.Offer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]offer.Offer), args.Error(1)
}

func (m *MockOfferService) BestOffer(ctx context.Context, customerID string, amount float64) (*offer.Offer, error) {
	args := m.Called(ctx, customerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func newSessionHandler(t *testing.T) *SessionHandler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := underwriting.NewEngine(underwriting.Thresholds{
		MinCreditScore: 720,
		MaxFOIR:        0.5,
		MinIncome:      30000,
		MaxTenure:      60,
	}, logger)

	orch := journey.NewOrchestrator(
		journey.NewInMemoryStateRepository(),
		new(MockCustomerService),
		new(MockOfferService),
		new(MockLoanService),
		sanction.NewInMemoryStore(),
		engine,
		underwriting.DefaultBandPolicy(),
		event.NewNoopEventPublisher(logger),
		logger,
	)
	return NewSessionHandler(orch, logger)
}

func turnRequest(sessionID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/turns", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{Keys: []string{"sessionID"}, Values: []string{sessionID}},
	}))
}

func TestSessionHandlerStartSession(t *testing.T) {
	handler := newSessionHandler(t)

	rec := httptest.NewRecorder()
	handler.StartSession(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.SessionResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Regexp(t, regexp.MustCompile(`^SESS_[0-9a-f]{8}$`), resp.SessionID)
	assert.Contains(t, resp.Reply, "full name")
	assert.Equal(t, string(journey.StageCollectingIdentity), resp.Stage)
}

func TestSessionHandlerHandleTurn(t *testing.T) {
	t.Run("advances the conversation", func(t *testing.T) {
		handler := newSessionHandler(t)

		rec := httptest.NewRecorder()
		handler.StartSession(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))
		var started dto.SessionResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&started))

		rec = httptest.NewRecorder()
		handler.HandleTurn(rec, turnRequest(started.SessionID, `{"message": "Priya Sharma"}`))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.SessionResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Reply, "mobile")
	})

	t.Run("rejects an empty message", func(t *testing.T) {
		handler := newSessionHandler(t)

		rec := httptest.NewRecorder()
		handler.HandleTurn(rec, turnRequest("SESS_0a1b2c3d", `{"message": ""}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		handler := newSessionHandler(t)

		rec := httptest.NewRecorder()
		handler.HandleTurn(rec, turnRequest("SESS_0a1b2c3d", `{"message": `))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		handler := newSessionHandler(t)

		rec := httptest.NewRecorder()
		handler.HandleTurn(rec, turnRequest("SESS_0a1b2c3d", `{"message": "hello", "extra": 1}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 404 for an unknown session", func(t *testing.T) {
		handler := newSessionHandler(t)

		rec := httptest.NewRecorder()
		handler.HandleTurn(rec, turnRequest("SESS_deadbeef", `{"message": "hello"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Error.Message)
	})
}

func TestSessionHandlerGetSession(t *testing.T) {
	handler := newSessionHandler(t)

	rec := httptest.NewRecorder()
	handler.StartSession(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	var started dto.SessionResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&started))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/"+started.SessionID, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{Keys: []string{"sessionID"}, Values: []string{started.SessionID}},
	}))
	handler.GetSession(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.SessionResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, started.SessionID, resp.SessionID)
	assert.Equal(t, string(journey.StageCollectingIdentity), resp.Stage)
	assert.Empty(t, resp.Reply)
}
