package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

func (s *DefaultService) ListCustomers(ctx context.Context, session models.SessionUser) ([]models.Customer, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing customers: %w", err)
	}
	return customers, nil
}

func (s *DefaultService) CreateCustomer(ctx context.Context, session models.SessionUser, req models.RegisterCustomerRequest) (*models.Customer, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.createCustomer(ctx, req)
}

func (s *DefaultService) createCustomer(ctx context.Context, req models.RegisterCustomerRequest) (*models.Customer, error) {
	username := strings.TrimSpace(req.Username)
	if err := s.ensureUsernameFree(ctx, username, ""); err != nil {
		return nil, err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:              strings.TrimSpace(req.Name),
		Username:          &username,
		Password:          hashed,
		Phone:             NormalizeDigits(req.Phone),
		Address:           strings.TrimSpace(req.Address),
		PreferredCurrency: req.PreferredCurrency,
	}
	if customer.PreferredCurrency == "" {
		customer.PreferredCurrency = models.CurrencyToman
	}

	if code := strings.TrimSpace(req.UniqueCode); code != "" {
		if err := s.ensureUniqueCodeFree(ctx, code, ""); err != nil {
			return nil, err
		}
		customer.UniqueCode = &code
		err = s.repo.CreateCustomer(ctx, customer)
	} else {
		err = s.insertWithGeneratedCode(ctx, customer)
	}
	if err != nil {
		if apperrors.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("error creating customer: %w", err)
	}

	log.Info().Str("customer_id", customer.ID).Str("unique_code", *customer.UniqueCode).Msg("Customer created")
	return customer, nil
}

// ensureUsernameFree rejects a username held by an admin or by any customer other than exceptID
func (s *DefaultService) ensureUsernameFree(ctx context.Context, username, exceptID string) error {
	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking username: %w", err)
	}
	if admin != nil {
		return apperrors.ErrUsernameTaken
	}

	existing, err := s.repo.GetCustomerByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("error checking username: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperrors.ErrUsernameTaken
	}
	return nil
}

func (s *DefaultService) ensureUniqueCodeFree(ctx context.Context, code, exceptID string) error {
	existing, err := s.repo.GetCustomerByUniqueCode(ctx, code)
	if err != nil {
		return fmt.Errorf("error checking unique code: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperrors.ErrUniqueCodeTaken
	}
	return nil
}

// GetCustomer is available to admins and to the customer themself
func (s *DefaultService) GetCustomer(ctx context.Context, session models.SessionUser, id string) (*models.Customer, error) {
	if !isAdmin(session) && session.UserID != id {
		return nil, apperrors.Authorization("you can only view your own profile")
	}
	return s.loadCustomer(ctx, id)
}

func (s *DefaultService) loadCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting customer: %w", err)
	}
	if customer == nil {
		return nil, apperrors.NotFound("customer")
	}
	return customer, nil
}

func (s *DefaultService) UpdateCustomer(ctx context.Context, session models.SessionUser, id string, req models.UpdateCustomerRequest) (*models.Customer, error) {
	if !isAdmin(session) && session.UserID != id {
		return nil, apperrors.Authorization("you can only edit your own profile")
	}

	customer, err := s.loadCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := s.ensureUsernameFree(ctx, username, id); err != nil {
			return nil, err
		}
		customer.Username = &username
	}
	if req.Password != nil {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		customer.Password = hashed
	}
	if req.Phone != nil {
		customer.Phone = NormalizeDigits(*req.Phone)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.UniqueCode != nil {
		code := strings.TrimSpace(*req.UniqueCode)
		if err := s.ensureUniqueCodeFree(ctx, code, id); err != nil {
			return nil, err
		}
		customer.UniqueCode = &code
	}
	if req.PreferredCurrency != nil {
		customer.PreferredCurrency = *req.PreferredCurrency
	}

	if err := s.repo.UpdateCustomer(ctx, customer); err != nil {
		if apperrors.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("error updating customer: %w", err)
	}
	return customer, nil
}

// DeleteCustomer is refused while the customer is party to any transaction.
// Otherwise their connections and requests go with them.
func (s *DefaultService) DeleteCustomer(ctx context.Context, session models.SessionUser, id string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}

	if _, err := s.loadCustomer(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountCustomerTransactions(ctx, id)
	if err != nil {
		return fmt.Errorf("error counting transactions: %w", err)
	}
	if count > 0 {
		return apperrors.Conflict("customer has transactions and cannot be deleted").
			WithDetails(map[string]int{"transactions": count})
	}

	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("error deleting customer: %w", err)
	}

	log.Info().Str("customer_id", id).Str("admin_id", session.UserID).Msg("Customer deleted")
	return nil
}
