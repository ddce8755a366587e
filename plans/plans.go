// Package plans is the therapy-plan resource client. All calls go through the
// apiclient choke point, so session eviction on unauthorized responses applies
// here like everywhere else.
package plans

import (
	"context"
	"net/http"
	"time"

	"github.com/careplanhq/portal-client/apiclient"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const plansEndpoint = "/plans"

var validate = validator.New()

// Status is the lifecycle state of a therapy plan.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// StatusFromString maps an API status string onto a known Status, defaulting
// to draft for anything unrecognised.
func StatusFromString(s string) Status {
	switch Status(s) {
	case StatusActive, StatusCompleted, StatusArchived:
		return Status(s)
	default:
		return StatusDraft
	}
}

// Plan is a therapy plan owned by a care provider for a client.
type Plan struct {
	ID         uuid.UUID       `json:"id"`
	ClientID   int64           `json:"client_id"`
	ProviderID int64           `json:"provider_id"`
	Title      string          `json:"title"`
	Goals      []string        `json:"goals,omitempty"`
	SessionFee decimal.Decimal `json:"session_fee"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CreateRequest is the body of POST /plans.
type CreateRequest struct {
	ClientID   int64           `json:"client_id" validate:"required,gt=0"`
	Title      string          `json:"title" validate:"required,min=3"`
	Goals      []string        `json:"goals,omitempty" validate:"omitempty,dive,min=1"`
	SessionFee decimal.Decimal `json:"session_fee"`
}

func (r CreateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(err, "[CreateRequest.Validate]")
	}
	if r.SessionFee.IsNegative() {
		return errors.New("[CreateRequest.Validate] session fee cannot be negative")
	}
	return nil
}

// UpdateRequest is the body of PUT /plans/{id}. Omitted fields are unchanged.
type UpdateRequest struct {
	Title      string           `json:"title,omitempty" validate:"omitempty,min=3"`
	Goals      []string         `json:"goals,omitempty" validate:"omitempty,dive,min=1"`
	SessionFee *decimal.Decimal `json:"session_fee,omitempty"`
}

func (r UpdateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(err, "[UpdateRequest.Validate]")
	}
	if r.SessionFee != nil && r.SessionFee.IsNegative() {
		return errors.New("[UpdateRequest.Validate] session fee cannot be negative")
	}
	return nil
}

// Service exposes the plan operations over the shared API client.
type Service struct {
	api    *apiclient.Client
	logger zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(api *apiclient.Client, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.New("[plans.NewService] api client is required")
	}
	s := &Service{api: api, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// List returns the plans visible to the current user. Providers see the plans
// they own; clients see their own - the server enforces that, not this client.
func (s *Service) List(ctx context.Context) ([]Plan, error) {
	var out []Plan
	if err := s.api.DoJSON(ctx, http.MethodGet, plansEndpoint, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.List]")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	var out Plan
	if err := s.api.DoJSON(ctx, http.MethodGet, plansEndpoint+"/"+id.String(), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Get]")
	}
	return &out, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	var out Plan
	if err := s.api.DoJSON(ctx, http.MethodPost, plansEndpoint, req, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Create]")
	}
	s.logger.Info().Str("plan_id", out.ID.String()).Msg("plan created")
	return &out, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, "[Service.Update]")
	}
	var out Plan
	if err := s.api.DoJSON(ctx, http.MethodPut, plansEndpoint+"/"+id.String(), req, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Update]")
	}
	return &out, nil
}

// Close marks a plan completed via POST /plans/{id}/close.
func (s *Service) Close(ctx context.Context, id uuid.UUID) (*Plan, error) {
	var out Plan
	if err := s.api.DoJSON(ctx, http.MethodPost, plansEndpoint+"/"+id.String()+"/close", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[Service.Close]")
	}
	return &out, nil
}
