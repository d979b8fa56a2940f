package order

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"nixtia-store/internal/domain"
	orderrepo "nixtia-store/internal/repository/order"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

type Service struct {
	repo         orderRepo
	validator    *Validator
	numbers      Numberer
	publisher    EventPublisher
	writeTimeout time.Duration
	logger       *log.Logger
	now          func() time.Time
	newID        func() string
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order, number domain.OrderNumberFunc) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	List(ctx context.Context, params orderrepo.ListParams) ([]domain.Order, int, error)
}

// EventPublisher announces committed orders to other systems.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o domain.Order, correlationID string) error
}

type Options struct {
	Numbers     Numberer
	AllowStripe bool
	// WriteTimeout bounds the storage work of a checkout once it has started.
	WriteTimeout time.Duration
	Publisher    EventPublisher
	Logger       *log.Logger
}

func New(repo orderrepo.Repository, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:         repo,
		validator:    NewValidator(opts.AllowStripe),
		numbers:      opts.Numbers,
		publisher:    opts.Publisher,
		writeTimeout: opts.WriteTimeout,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

type CreateRequest struct {
	Body           []byte
	IdempotencyKey string
	CorrelationID  string
}

type CreateResult struct {
	Order *domain.Order
	// Replayed is set when the idempotency key matched an earlier order.
	Replayed bool
}

// Create validates a checkout body and stores it as a new order. Storage
// failures come back as *DependencyError and are never retried here.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	in, err := s.validator.Validate(req.Body)
	if err != nil {
		return nil, err
	}

	// The shopper leaving must not abort a write that may already be committed.
	ctx, cancel := s.writeContext(ctx)
	defer cancel()

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, key)
		switch {
		case err == nil:
			s.logger.Printf("order service: replay idempotency_key=%s id=%s number=%s", key, existing.ID, existing.OrderNumber)
			return &CreateResult{Order: existing, Replayed: true}, nil
		case !errors.Is(err, domain.ErrNotFound):
			s.logger.Printf("order service: idempotency lookup key=%s error=%v", key, err)
			return nil, &DependencyError{Op: "lookup idempotency key", Err: err}
		}
	}

	now := s.now().UTC()
	o := domain.Order{
		ID:            s.newID(),
		CustomerPhone: in.CustomerPhone,
		PaymentMethod: in.PaymentMethod,
		Items:         in.Items,
		TotalAmount:   domain.ItemsTotal(in.Items),
		PaymentStatus: domain.PaymentStatusPending,
		OrderStatus:   domain.OrderStatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if key != "" {
		o.IdempotencyKey = &key
	}

	created, err := s.repo.Create(ctx, o, s.numbers.Format)
	if err != nil {
		if key != "" && errors.Is(err, domain.ErrAlreadyExists) {
			if existing, getErr := s.repo.GetByIdempotencyKey(ctx, key); getErr == nil {
				s.logger.Printf("order service: replay after race idempotency_key=%s id=%s", key, existing.ID)
				return &CreateResult{Order: existing, Replayed: true}, nil
			}
		}
		s.logger.Printf("order service: create phone=%s method=%s items=%d error=%v", in.CustomerPhone, in.PaymentMethod, len(in.Items), err)
		return nil, &DependencyError{Op: "create order", Err: err}
	}

	s.logger.Printf("order service: created id=%s number=%s total=%s", created.ID, created.OrderNumber, created.TotalAmount.StringFixed(2))
	s.publishCreated(ctx, *created, req.CorrelationID)
	return &CreateResult{Order: created}, nil
}

func (s *Service) publishCreated(ctx context.Context, o domain.Order, correlationID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCreated(ctx, o, correlationID); err != nil {
		s.logger.Printf("order service: publish OrderCreated id=%s error=%v", o.ID, err)
	}
}

func (s *Service) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.writeTimeout > 0 {
		return context.WithTimeout(ctx, s.writeTimeout)
	}
	return ctx, func() {}
}

// Get loads an order for the confirmation screen. Ids that are not UUIDs
// return domain.ErrNotFound without touching storage; other storage failures
// return *DependencyError.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if !IsOrderID(id) {
		s.logger.Printf("order service: get malformed id=%q", id)
		return nil, domain.ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("order service: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Printf("order service: get id=%s error=%v", id, err)
		return nil, &DependencyError{Op: "get order", Err: err}
	}
	return o, nil
}

type ListResult struct {
	Orders []domain.Order
	Total  int
	Limit  int
	Offset int
}

// List pages through orders for the admin dashboard.
func (s *Service) List(ctx context.Context, params orderrepo.ListParams) (*ListResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultListLimit
	}
	if params.Limit > MaxListLimit {
		params.Limit = MaxListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	if !params.SortBy.Valid() {
		params.SortBy = orderrepo.SortByCreatedAt
	}

	orders, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Printf("order service: list sort=%s error=%v", params.SortBy, err)
		return nil, &DependencyError{Op: "list orders", Err: err}
	}
	return &ListResult{Orders: orders, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}

// IsOrderID reports whether id has the canonical 8-4-4-4-12 UUID shape.
func IsOrderID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
