package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
	"github.com/zanledger/server/internal/report"
)

func (s *DefaultService) ListTransactions(ctx context.Context, session models.SessionUser) ([]models.TransactionView, error) {
	customerID := session.UserID
	if isAdmin(session) {
		customerID = ""
	}

	txns, err := s.repo.ListTransactions(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	return lo.Map(txns, func(t models.CustomerTransaction, _ int) models.TransactionView {
		return BuildTransactionView(t)
	}), nil
}

func buildAccounts(inputs []models.BankAccountInput) ([]models.BankAccount, error) {
	accounts := make([]models.BankAccount, 0, len(inputs))
	for i, in := range inputs {
		amount, err := ParseAmount(in.DeclaredAmount)
		if err != nil {
			return nil, apperrors.Validation("account %d: %s", i+1, err.Error())
		}
		accounts = append(accounts, models.BankAccount{
			ID:                strings.TrimSpace(in.ID),
			AccountHolderName: strings.TrimSpace(in.AccountHolderName),
			AccountNumber:     NormalizeDigits(in.AccountNumber),
			Sheba:             strings.ToUpper(NormalizeDigits(in.Sheba)),
			CardNumber:        strings.ReplaceAll(NormalizeDigits(in.CardNumber), "-", ""),
			BankName:          strings.TrimSpace(in.BankName),
			DeclaredAmount:    amount,
		})
	}
	return accounts, nil
}

func (s *DefaultService) CreateTransaction(ctx context.Context, session models.SessionUser, req models.CreateTransactionRequest) (*models.TransactionView, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}
	if req.ToCustomerID == session.UserID {
		return nil, apperrors.Validation("the other party must be a different customer")
	}
	if len(req.Accounts) == 0 {
		return nil, apperrors.Validation("at least one bank account is required")
	}

	if _, err := s.loadCustomer(ctx, req.ToCustomerID); err != nil {
		return nil, err
	}

	accounts, err := buildAccounts(req.Accounts)
	if err != nil {
		return nil, err
	}
	// Accounts of a new transaction are always new
	for i := range accounts {
		accounts[i].ID = ""
	}

	total, err := parseOptionalAmount(req.DeclaredTotalAmount)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		total = sumAmounts(accounts, func(a models.BankAccount) int64 { return a.DeclaredAmount })
	}

	txn := &models.CustomerTransaction{
		FromCustomerID:      session.UserID,
		ToCustomerID:        req.ToCustomerID,
		Description:         strings.TrimSpace(req.Description),
		DeclaredTotalAmount: total,
		Type:                req.Type,
		Status:              models.TransactionPending,
		Accounts:            accounts,
	}

	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}

	log.Info().Str("transaction_id", txn.ID).Int("accounts", len(accounts)).Msg("Transaction created")
	return s.transactionView(ctx, txn.ID)
}

// loadTransaction loads a transaction the caller may see: a party to it or an admin
func (s *DefaultService) loadTransaction(ctx context.Context, session models.SessionUser, id string) (*models.CustomerTransaction, error) {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if txn == nil {
		return nil, apperrors.NotFound("transaction")
	}
	if !isAdmin(session) && !txn.IsParty(session.UserID) {
		return nil, apperrors.Authorization("you are not a party to this transaction")
	}
	return txn, nil
}

func (s *DefaultService) transactionView(ctx context.Context, id string) (*models.TransactionView, error) {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if txn == nil {
		return nil, apperrors.NotFound("transaction")
	}
	view := BuildTransactionView(*txn)
	return &view, nil
}

func (s *DefaultService) GetTransaction(ctx context.Context, session models.SessionUser, id string) (*models.TransactionView, error) {
	txn, err := s.loadTransaction(ctx, session, id)
	if err != nil {
		return nil, err
	}
	view := BuildTransactionView(*txn)
	return &view, nil
}

// UpdateTransaction applies a partial update by either party or an admin
func (s *DefaultService) UpdateTransaction(ctx context.Context, session models.SessionUser, id string, req models.UpdateTransactionRequest) (*models.TransactionView, error) {
	txn, err := s.loadTransaction(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		txn.Description = strings.TrimSpace(*req.Description)
	}
	if req.Type != nil {
		txn.Type = *req.Type
	}
	if req.DeclaredTotalAmount != nil {
		total, err := parseOptionalAmount(*req.DeclaredTotalAmount)
		if err != nil {
			return nil, err
		}
		txn.DeclaredTotalAmount = total
	}
	if req.Status != nil && *req.Status != txn.Status {
		if txn.Status != models.TransactionPending || *req.Status == models.TransactionPending {
			return nil, apperrors.InvalidState(fmt.Sprintf("transaction cannot move from %s to %s", txn.Status, *req.Status))
		}
		txn.Status = *req.Status
	}

	syncAccounts := req.Accounts != nil
	if syncAccounts {
		accounts, err := mergeAccounts(txn.Accounts, *req.Accounts)
		if err != nil {
			return nil, err
		}
		txn.Accounts = accounts
		if req.DeclaredTotalAmount == nil || txn.DeclaredTotalAmount == 0 {
			txn.DeclaredTotalAmount = sumAmounts(accounts, func(a models.BankAccount) int64 { return a.DeclaredAmount })
		}
	}

	if err := s.repo.UpdateTransaction(ctx, txn, syncAccounts); err != nil {
		return nil, fmt.Errorf("error updating transaction: %w", err)
	}
	return s.transactionView(ctx, id)
}

// mergeAccounts resolves the submitted account list against the stored one.
// An id that does not belong to this transaction is rejected.
func mergeAccounts(current []models.BankAccount, inputs []models.BankAccountInput) ([]models.BankAccount, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Validation("at least one bank account is required")
	}

	accounts, err := buildAccounts(inputs)
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(current, func(a models.BankAccount) string { return a.ID })
	for i := range accounts {
		if accounts[i].ID == "" {
			continue
		}
		stored, ok := byID[accounts[i].ID]
		if !ok {
			return nil, apperrors.NotFound("bank account " + accounts[i].ID)
		}
		accounts[i].CreatedAt = stored.CreatedAt
	}

	ids := lo.Compact(lo.Map(accounts, func(a models.BankAccount, _ int) string { return a.ID }))
	if len(lo.Uniq(ids)) != len(ids) {
		return nil, apperrors.Validation("an account is listed more than once")
	}
	return accounts, nil
}

// DeleteTransaction is reserved to the creator and admins
func (s *DefaultService) DeleteTransaction(ctx context.Context, session models.SessionUser, id string) error {
	txn, err := s.loadTransaction(ctx, session, id)
	if err != nil {
		return err
	}
	if !isAdmin(session) && txn.FromCustomerID != session.UserID {
		return apperrors.Authorization("only the creator may delete this transaction")
	}

	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("error deleting transaction: %w", err)
	}

	log.Info().Str("transaction_id", id).Str("user_id", session.UserID).Msg("Transaction deleted")
	return nil
}

// GetTransactionReport formats the transaction in the caller's preferred currency
func (s *DefaultService) GetTransactionReport(ctx context.Context, session models.SessionUser, id string) (*models.TransactionReport, error) {
	txn, err := s.loadTransaction(ctx, session, id)
	if err != nil {
		return nil, err
	}

	currency := models.CurrencyToman
	if !isAdmin(session) {
		customer, err := s.loadCustomer(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		currency = customer.PreferredCurrency
	}

	return report.BuildTransactionReport(BuildTransactionView(*txn), currency), nil
}
