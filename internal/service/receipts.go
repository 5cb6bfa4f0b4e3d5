package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

// checkDuplicate scans every receipt reachable by the customer for a reused code
func (s *DefaultService) checkDuplicate(ctx context.Context, customerID, trackingCode, depositID, excludeID string) error {
	if strings.TrimSpace(trackingCode) == "" && strings.TrimSpace(depositID) == "" {
		return nil
	}

	existing, err := s.repo.ListCustomerReceipts(ctx, customerID)
	if err != nil {
		return fmt.Errorf("error listing receipts: %w", err)
	}

	if dup := FindDuplicateReceipt(trackingCode, depositID, excludeID, existing); dup != nil {
		return DuplicateReceiptError(dup)
	}
	return nil
}

// SubmitReceipt files a deposit claim against one account of the transaction.
// Only a party to the transaction may submit.
func (s *DefaultService) SubmitReceipt(ctx context.Context, session models.SessionUser, transactionID string, req models.ReceiptRequest) (*models.Receipt, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	txn, err := s.loadTransaction(ctx, session, transactionID)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	if account == nil || account.TransactionID != txn.ID {
		return nil, apperrors.NotFound("bank account")
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	receiptDate, err := ParseReceiptDate(req.ReceiptDate)
	if err != nil {
		return nil, err
	}

	trackingCode := NormalizeDigits(req.TrackingCode)
	depositID := NormalizeDigits(req.DepositID)
	if err := s.checkDuplicate(ctx, session.UserID, trackingCode, depositID, ""); err != nil {
		return nil, err
	}

	receipt := &models.Receipt{
		AccountID:     account.ID,
		Amount:        amount,
		TrackingCode:  trackingCode,
		DepositID:     depositID,
		Description:   strings.TrimSpace(req.Description),
		DepositorName: strings.TrimSpace(req.DepositorName),
		ReceiptDate:   receiptDate,
		SubmittedBy:   session.UserID,
		Status:        models.ReceiptPending,
		ApprovedBy:    pq.StringArray{},
	}

	if err := s.repo.CreateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("error creating receipt: %w", err)
	}

	log.Info().Str("receipt_id", receipt.ID).Str("transaction_id", txn.ID).Int64("amount", amount).Msg("Receipt submitted")
	return s.reloadReceipt(ctx, receipt)
}

func (s *DefaultService) reloadReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	fresh, err := s.repo.GetReceipt(ctx, receipt.ID)
	if err != nil {
		return nil, fmt.Errorf("error getting receipt: %w", err)
	}
	if fresh == nil {
		return receipt, nil
	}
	return fresh, nil
}

func (s *DefaultService) loadReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	receipt, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting receipt: %w", err)
	}
	if receipt == nil {
		return nil, apperrors.NotFound("receipt")
	}
	return receipt, nil
}

// ownReceipt loads a receipt the caller submitted
func (s *DefaultService) ownReceipt(ctx context.Context, session models.SessionUser, id string) (*models.Receipt, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	receipt, err := s.loadReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt.SubmittedBy != session.UserID {
		return nil, apperrors.Authorization("only the submitter may change this receipt")
	}
	return receipt, nil
}

// UpdateReceipt edits a receipt's content. Any edit sends it back to pending
// and drops earlier approvals.
func (s *DefaultService) UpdateReceipt(ctx context.Context, session models.SessionUser, id string, req models.UpdateReceiptRequest) (*models.Receipt, error) {
	receipt, err := s.ownReceipt(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		amount, err := ParseAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		receipt.Amount = amount
	}
	if req.TrackingCode != nil {
		receipt.TrackingCode = NormalizeDigits(*req.TrackingCode)
	}
	if req.DepositID != nil {
		receipt.DepositID = NormalizeDigits(*req.DepositID)
	}
	if req.Description != nil {
		receipt.Description = strings.TrimSpace(*req.Description)
	}
	if req.DepositorName != nil {
		receipt.DepositorName = strings.TrimSpace(*req.DepositorName)
	}
	if req.ReceiptDate != nil {
		date, err := ParseReceiptDate(*req.ReceiptDate)
		if err != nil {
			return nil, err
		}
		receipt.ReceiptDate = date
	}

	if err := s.checkDuplicate(ctx, session.UserID, receipt.TrackingCode, receipt.DepositID, receipt.ID); err != nil {
		return nil, err
	}

	receipt.Status = models.ReceiptPending
	receipt.ApprovedBy = pq.StringArray{}

	if err := s.repo.UpdateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("error updating receipt: %w", err)
	}
	return receipt, nil
}

func (s *DefaultService) DeleteReceipt(ctx context.Context, session models.SessionUser, id string) error {
	if _, err := s.ownReceipt(ctx, session, id); err != nil {
		return err
	}

	if err := s.repo.DeleteReceipt(ctx, id); err != nil {
		return fmt.Errorf("error deleting receipt: %w", err)
	}
	return nil
}

// reviewableReceipt loads a receipt the caller may approve or flag: they must
// be the other party of the transaction from the submitter's point of view
func (s *DefaultService) reviewableReceipt(ctx context.Context, session models.SessionUser, id string) (*models.Receipt, error) {
	if err := requireCustomer(session); err != nil {
		return nil, err
	}

	receipt, err := s.loadReceipt(ctx, id)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.GetAccount(ctx, receipt.AccountID)
	if err != nil {
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	if account == nil {
		return nil, apperrors.NotFound("bank account")
	}

	txn, err := s.repo.GetTransaction(ctx, account.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if txn == nil {
		return nil, apperrors.NotFound("transaction")
	}

	if receipt.SubmittedBy == session.UserID {
		return nil, apperrors.Authorization("you cannot review a receipt you submitted")
	}
	if !txn.IsParty(session.UserID) || txn.Counterparty(receipt.SubmittedBy) != session.UserID {
		return nil, apperrors.Authorization("only the other party may review this receipt")
	}
	return receipt, nil
}

// ApproveReceipt marks the receipt approved. Approving twice changes nothing.
func (s *DefaultService) ApproveReceipt(ctx context.Context, session models.SessionUser, id string) (*models.Receipt, error) {
	receipt, err := s.reviewableReceipt(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if receipt.Status == models.ReceiptApproved && lo.Contains([]string(receipt.ApprovedBy), session.UserID) {
		return receipt, nil
	}

	receipt.Status = models.ReceiptApproved
	receipt.ApprovedBy = lo.Uniq(append([]string(receipt.ApprovedBy), session.UserID))

	if err := s.repo.UpdateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("error approving receipt: %w", err)
	}

	log.Info().Str("receipt_id", id).Str("approver_id", session.UserID).Msg("Receipt approved")
	return receipt, nil
}

// MarkReceiptNeedsFollowUp flags the receipt and withdraws the caller's approval
func (s *DefaultService) MarkReceiptNeedsFollowUp(ctx context.Context, session models.SessionUser, id string) (*models.Receipt, error) {
	receipt, err := s.reviewableReceipt(ctx, session, id)
	if err != nil {
		return nil, err
	}

	receipt.Status = models.ReceiptNeedsFollowUp
	receipt.ApprovedBy = lo.Without([]string(receipt.ApprovedBy), session.UserID)
	if receipt.ApprovedBy == nil {
		receipt.ApprovedBy = pq.StringArray{}
	}

	if err := s.repo.UpdateReceipt(ctx, receipt); err != nil {
		return nil, fmt.Errorf("error flagging receipt: %w", err)
	}
	return receipt, nil
}
