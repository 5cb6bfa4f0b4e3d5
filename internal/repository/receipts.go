package repository

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/zanledger/server/internal/models"
)

func (r *PostgresRepository) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	stamp(&receipt.ID, &receipt.CreatedAt, &receipt.UpdatedAt)
	if receipt.Status == "" {
		receipt.Status = models.ReceiptPending
	}
	if receipt.ApprovedBy == nil {
		receipt.ApprovedBy = pq.StringArray{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO receipts (id, account_id, amount, tracking_code, deposit_id, description,
			depositor_name, receipt_date, submitted_by, status, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, receipt.ID, receipt.AccountID, receipt.Amount, receipt.TrackingCode, receipt.DepositID,
		receipt.Description, receipt.DepositorName, receipt.ReceiptDate, receipt.SubmittedBy,
		receipt.Status, receipt.ApprovedBy, receipt.CreatedAt, receipt.UpdatedAt)
	return err
}

func (r *PostgresRepository) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	var receipt models.Receipt
	found, err := getOne(ctx, r.db, &receipt, selectReceiptQuery+` WHERE rc.id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &receipt, nil
}

func (r *PostgresRepository) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	receipt.UpdatedAt = time.Now().UTC()
	if receipt.ApprovedBy == nil {
		receipt.ApprovedBy = pq.StringArray{}
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE receipts
		SET amount = $2, tracking_code = $3, deposit_id = $4, description = $5, depositor_name = $6,
			receipt_date = $7, status = $8, approved_by = $9, updated_at = $10
		WHERE id = $1
	`, receipt.ID, receipt.Amount, receipt.TrackingCode, receipt.DepositID, receipt.Description,
		receipt.DepositorName, receipt.ReceiptDate, receipt.Status, receipt.ApprovedBy, receipt.UpdatedAt)
	return err
}

func (r *PostgresRepository) DeleteReceipt(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	return err
}

// ListCustomerReceipts lists every receipt on transactions the customer is a party to
func (r *PostgresRepository) ListCustomerReceipts(ctx context.Context, customerID string) ([]models.ReceiptRecord, error) {
	query := `
		SELECT rc.*, c.name AS submitted_by_name,
			a.transaction_id, a.account_holder_name, a.bank_name
		FROM receipts rc
		JOIN bank_accounts a ON a.id = rc.account_id
		JOIN customer_transactions t ON t.id = a.transaction_id
		JOIN customers c ON c.id = rc.submitted_by
		WHERE t.from_customer_id = $1 OR t.to_customer_id = $1
		ORDER BY rc.created_at ASC
	`

	records := []models.ReceiptRecord{}
	if err := r.db.SelectContext(ctx, &records, query, customerID); err != nil {
		return nil, err
	}
	return records, nil
}
