package service

import (
	"context"
	"time"

	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
	"github.com/zanledger/server/internal/repository"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterCustomerRequest) (*models.Customer, error)
	ParseToken(token string) *models.SessionUser
	CurrentUser(ctx context.Context, session models.SessionUser) (*models.CurrentUser, error)
	TokenTTL() time.Duration

	// Directory
	ListCustomers(ctx context.Context, session models.SessionUser) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, session models.SessionUser, req models.RegisterCustomerRequest) (*models.Customer, error)
	GetCustomer(ctx context.Context, session models.SessionUser, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, session models.SessionUser, id string, req models.UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, session models.SessionUser, id string) error

	// Connections
	ListConnections(ctx context.Context, session models.SessionUser) ([]models.ConnectionWithCustomer, error)
	UpdateConnection(ctx context.Context, session models.SessionUser, id string, req models.UpdateConnectionRequest) (*models.CustomerConnection, error)
	DeleteConnection(ctx context.Context, session models.SessionUser, id string) error
	AddOfflineCustomer(ctx context.Context, session models.SessionUser, req models.AddOfflineCustomerRequest) (*models.OfflineCustomerResponse, error)

	// Connection requests
	ListRequests(ctx context.Context, session models.SessionUser) (*models.RequestsResponse, error)
	CreateRequest(ctx context.Context, session models.SessionUser, req models.CreateConnectionRequest) (*models.CustomerRequest, error)
	AcceptRequest(ctx context.Context, session models.SessionUser, id string) (*models.CustomerRequest, error)
	RejectRequest(ctx context.Context, session models.SessionUser, id string) (*models.CustomerRequest, error)

	// Transactions
	ListTransactions(ctx context.Context, session models.SessionUser) ([]models.TransactionView, error)
	CreateTransaction(ctx context.Context, session models.SessionUser, req models.CreateTransactionRequest) (*models.TransactionView, error)
	GetTransaction(ctx context.Context, session models.SessionUser, id string) (*models.TransactionView, error)
	UpdateTransaction(ctx context.Context, session models.SessionUser, id string, req models.UpdateTransactionRequest) (*models.TransactionView, error)
	DeleteTransaction(ctx context.Context, session models.SessionUser, id string) error
	GetTransactionReport(ctx context.Context, session models.SessionUser, id string) (*models.TransactionReport, error)

	// Receipts
	SubmitReceipt(ctx context.Context, session models.SessionUser, transactionID string, req models.ReceiptRequest) (*models.Receipt, error)
	UpdateReceipt(ctx context.Context, session models.SessionUser, id string, req models.UpdateReceiptRequest) (*models.Receipt, error)
	DeleteReceipt(ctx context.Context, session models.SessionUser, id string) error
	ApproveReceipt(ctx context.Context, session models.SessionUser, id string) (*models.Receipt, error)
	MarkReceiptNeedsFollowUp(ctx context.Context, session models.SessionUser, id string) (*models.Receipt, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	newUniqueCode func() string
}

// Option customises a DefaultService
type Option func(*DefaultService)

// WithUniqueCodeGenerator replaces the generator used for customer unique codes
func WithUniqueCodeGenerator(gen func() string) Option {
	return func(s *DefaultService) {
		s.newUniqueCode = gen
	}
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret string, tokenTTL time.Duration, opts ...Option) Service {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour // 7 days token validity
	}

	s := &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenTTL,
		newUniqueCode: GenerateUniqueCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DefaultService) TokenTTL() time.Duration {
	return s.tokenDuration
}

func requireAdmin(session models.SessionUser) error {
	if session.Role != models.RoleAdmin {
		return apperrors.ErrAdminOnly
	}
	return nil
}

func requireCustomer(session models.SessionUser) error {
	if session.Role != models.RoleCustomer {
		return apperrors.ErrCustomerOnly
	}
	return nil
}

func isAdmin(session models.SessionUser) bool {
	return session.Role == models.RoleAdmin
}
