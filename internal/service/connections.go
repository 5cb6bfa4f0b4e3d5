package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

func (s *DefaultService) ListConnections(ctx context.Context, session models.SessionUser) ([]models.ConnectionWithCustomer, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	connections, err := s.repo.ListConnections(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing connections: %w", err)
	}
	return connections, nil
}

// ownConnection loads a connection and checks it belongs to the caller
func (s *DefaultService) ownConnection(ctx context.Context, session models.SessionUser, id string) (*models.CustomerConnection, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	conn, err := s.repo.GetConnection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting connection: %w", err)
	}
	if conn == nil {
		return nil, apperrors.NotFound("connection")
	}
	if conn.OwnerID != session.UserID {
		return nil, apperrors.Authorization("this connection is not in your list")
	}
	return conn, nil
}

func (s *DefaultService) UpdateConnection(ctx context.Context, session models.SessionUser, id string, req models.UpdateConnectionRequest) (*models.CustomerConnection, error) {
	conn, err := s.ownConnection(ctx, session, id)
	if err != nil {
		return nil, err
	}

	conn.CustomName = strings.TrimSpace(req.CustomName)
	if err := s.repo.UpdateConnectionName(ctx, id, conn.CustomName); err != nil {
		return nil, fmt.Errorf("error updating connection: %w", err)
	}
	return conn, nil
}

// DeleteConnection removes the caller's side of the link only
func (s *DefaultService) DeleteConnection(ctx context.Context, session models.SessionUser, id string) error {
	if _, err := s.ownConnection(ctx, session, id); err != nil {
		return err
	}

	if err := s.repo.DeleteConnection(ctx, id); err != nil {
		return fmt.Errorf("error deleting connection: %w", err)
	}
	return nil
}

// AddOfflineCustomer records an external party that is not in the directory.
// The placeholder has no credentials or unique code, so nobody else can link to it.
func (s *DefaultService) AddOfflineCustomer(ctx context.Context, session models.SessionUser, req models.AddOfflineCustomerRequest) (*models.OfflineCustomerResponse, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.CustomerName)
	label := strings.TrimSpace(req.CustomName)
	if label == "" {
		label = name
	}

	customer := &models.Customer{
		Name:              name,
		PreferredCurrency: models.CurrencyToman,
		Offline:           true,
	}
	conn := &models.CustomerConnection{
		OwnerID:    session.UserID,
		CustomName: label,
	}

	if err := s.repo.CreateOfflineCustomer(ctx, customer, conn); err != nil {
		return nil, fmt.Errorf("error creating offline customer: %w", err)
	}

	return &models.OfflineCustomerResponse{Customer: customer, Connection: conn}, nil
}

func (s *DefaultService) ListRequests(ctx context.Context, session models.SessionUser) (*models.RequestsResponse, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	received, err := s.repo.ListReceivedRequests(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing received requests: %w", err)
	}

	sent, err := s.repo.ListSentRequests(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing sent requests: %w", err)
	}

	return &models.RequestsResponse{ReceivedRequests: received, SentRequests: sent}, nil
}

// CreateRequest asks the customer holding uniqueCode to link with the caller
func (s *DefaultService) CreateRequest(ctx context.Context, session models.SessionUser, req models.CreateConnectionRequest) (*models.CustomerRequest, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	target, err := s.repo.GetCustomerByUniqueCode(ctx, strings.TrimSpace(req.UniqueCode))
	if err != nil {
		return nil, fmt.Errorf("error finding customer: %w", err)
	}
	if target == nil {
		return nil, apperrors.NotFound("customer with this unique code")
	}
	if target.ID == session.UserID {
		return nil, apperrors.Validation("you cannot add yourself")
	}

	// Only the caller's side counts: the peer may still list the caller after
	// the caller removed them
	existing, err := s.repo.FindConnection(ctx, session.UserID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking connection: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("this customer is already in your list")
	}

	pending, err := s.repo.FindPendingRequestBetween(ctx, session.UserID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking requests: %w", err)
	}
	if pending != nil {
		return nil, apperrors.Conflict("a pending request already exists between you").
			WithDetails(map[string]string{"requestId": pending.ID})
	}

	request := &models.CustomerRequest{
		FromCustomerID: session.UserID,
		ToCustomerID:   target.ID,
		ToCustomerName: target.Name,
		CustomName:     strings.TrimSpace(req.CustomName),
		Status:         models.RequestPending,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	created, err := s.repo.GetRequest(ctx, request.ID)
	if err != nil || created == nil {
		return request, nil
	}
	return created, nil
}

// pendingRequestFor loads a request the caller received and may still act on
func (s *DefaultService) pendingRequestFor(ctx context.Context, session models.SessionUser, id string) (*models.CustomerRequest, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	request, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting request: %w", err)
	}
	if request == nil {
		return nil, apperrors.NotFound("request")
	}
	if request.ToCustomerID != session.UserID {
		return nil, apperrors.Authorization("only the recipient may respond to this request")
	}
	if request.Status != models.RequestPending {
		return nil, apperrors.ErrRequestProcessed
	}
	return request, nil
}

// AcceptRequest links both customers: each gets a connection to the other.
// The sender keeps the label they chose; the recipient sees the sender's name.
// A side that already lists the other keeps its existing row and label.
func (s *DefaultService) AcceptRequest(ctx context.Context, session models.SessionUser, id string) (*models.CustomerRequest, error) {
	request, err := s.pendingRequestFor(ctx, session, id)
	if err != nil {
		return nil, err
	}

	connections := []*models.CustomerConnection{
		{
			OwnerID:             request.ToCustomerID,
			ConnectedCustomerID: request.FromCustomerID,
			CustomName:          request.FromCustomerName,
		},
		{
			OwnerID:             request.FromCustomerID,
			ConnectedCustomerID: request.ToCustomerID,
			CustomName:          request.CustomName,
		},
	}

	if err := s.repo.AcceptRequest(ctx, id, connections); err != nil {
		if apperrors.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("error accepting request: %w", err)
	}

	log.Info().Str("request_id", id).Msg("Connection request accepted")
	request.Status = models.RequestAccepted
	return request, nil
}

func (s *DefaultService) RejectRequest(ctx context.Context, session models.SessionUser, id string) (*models.CustomerRequest, error) {
	request, err := s.pendingRequestFor(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RejectRequest(ctx, id); err != nil {
		if apperrors.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("error rejecting request: %w", err)
	}

	request.Status = models.RequestRejected
	return request, nil
}
