package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/zanledger/server/internal/models"
)

const selectTransactionQuery = `
	SELECT t.*, fc.name AS from_customer_name, tc.name AS to_customer_name
	FROM customer_transactions t
	JOIN customers fc ON fc.id = t.from_customer_id
	JOIN customers tc ON tc.id = t.to_customer_id
`

const selectReceiptQuery = `
	SELECT rc.*, c.name AS submitted_by_name
	FROM receipts rc
	JOIN customers c ON c.id = rc.submitted_by
`

const upsertAccountQuery = `
	INSERT INTO bank_accounts (id, transaction_id, account_holder_name, account_number, sheba,
		card_number, bank_name, declared_amount, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		account_holder_name = EXCLUDED.account_holder_name,
		account_number = EXCLUDED.account_number,
		sheba = EXCLUDED.sheba,
		card_number = EXCLUDED.card_number,
		bank_name = EXCLUDED.bank_name,
		declared_amount = EXCLUDED.declared_amount,
		updated_at = EXCLUDED.updated_at
	WHERE bank_accounts.transaction_id = EXCLUDED.transaction_id
`

func upsertAccount(ctx context.Context, e sqlx.ExecerContext, txnID string, account *models.BankAccount) error {
	createdAt := account.CreatedAt
	stamp(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if !createdAt.IsZero() {
		account.CreatedAt = createdAt
	}
	account.TransactionID = txnID

	_, err := e.ExecContext(ctx, upsertAccountQuery,
		account.ID, account.TransactionID, account.AccountHolderName, account.AccountNumber,
		account.Sheba, account.CardNumber, account.BankName, account.DeclaredAmount,
		account.CreatedAt, account.UpdatedAt)
	return err
}

// CreateTransaction inserts a transaction with all of its accounts
func (r *PostgresRepository) CreateTransaction(ctx context.Context, txn *models.CustomerTransaction) error {
	stamp(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
	if txn.Status == "" {
		txn.Status = models.TransactionPending
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO customer_transactions (id, from_customer_id, to_customer_id, description,
				declared_total_amount, type, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, txn.ID, txn.FromCustomerID, txn.ToCustomerID, txn.Description,
			txn.DeclaredTotalAmount, txn.Type, txn.Status, txn.CreatedAt, txn.UpdatedAt)
		if err != nil {
			return err
		}

		for i := range txn.Accounts {
			if err := upsertAccount(ctx, tx, txn.ID, &txn.Accounts[i]); err != nil {
				return err
			}
			txn.Accounts[i].Receipts = []models.Receipt{}
		}
		return nil
	})
}

// GetTransaction gets a transaction with its accounts and their receipts
func (r *PostgresRepository) GetTransaction(ctx context.Context, id string) (*models.CustomerTransaction, error) {
	var txn models.CustomerTransaction
	found, err := getOne(ctx, r.db, &txn, selectTransactionQuery+` WHERE t.id = $1`, id)
	if err != nil || !found {
		return nil, err
	}

	txns := []models.CustomerTransaction{txn}
	if err := r.loadAccounts(ctx, txns); err != nil {
		return nil, err
	}
	return &txns[0], nil
}

// ListTransactions lists transactions where the customer is either party,
// newest first. An empty customerID lists every transaction.
func (r *PostgresRepository) ListTransactions(ctx context.Context, customerID string) ([]models.CustomerTransaction, error) {
	txns := []models.CustomerTransaction{}

	var err error
	if customerID == "" {
		err = r.db.SelectContext(ctx, &txns, selectTransactionQuery+` ORDER BY t.created_at DESC`)
	} else {
		err = r.db.SelectContext(ctx, &txns,
			selectTransactionQuery+` WHERE t.from_customer_id = $1 OR t.to_customer_id = $1 ORDER BY t.created_at DESC`,
			customerID)
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadAccounts(ctx, txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// loadAccounts fills Accounts and their Receipts for every transaction in txns
func (r *PostgresRepository) loadAccounts(ctx context.Context, txns []models.CustomerTransaction) error {
	if len(txns) == 0 {
		return nil
	}

	txnIDs := lo.Map(txns, func(t models.CustomerTransaction, _ int) string { return t.ID })

	var accounts []models.BankAccount
	err := r.db.SelectContext(ctx, &accounts,
		`SELECT * FROM bank_accounts WHERE transaction_id = ANY($1) ORDER BY created_at ASC, id ASC`,
		pq.Array(txnIDs))
	if err != nil {
		return err
	}

	accountIDs := lo.Map(accounts, func(a models.BankAccount, _ int) string { return a.ID })

	var receipts []models.Receipt
	if len(accountIDs) > 0 {
		err = r.db.SelectContext(ctx, &receipts,
			selectReceiptQuery+` WHERE rc.account_id = ANY($1) ORDER BY rc.created_at ASC`,
			pq.Array(accountIDs))
		if err != nil {
			return err
		}
	}

	receiptsByAccount := lo.GroupBy(receipts, func(rc models.Receipt) string { return rc.AccountID })
	for i := range accounts {
		accounts[i].Receipts = receiptsByAccount[accounts[i].ID]
		if accounts[i].Receipts == nil {
			accounts[i].Receipts = []models.Receipt{}
		}
	}

	accountsByTxn := lo.GroupBy(accounts, func(a models.BankAccount) string { return a.TransactionID })
	for i := range txns {
		txns[i].Accounts = accountsByTxn[txns[i].ID]
		if txns[i].Accounts == nil {
			txns[i].Accounts = []models.BankAccount{}
		}
	}
	return nil
}

// UpdateTransaction writes the transaction's own fields. With syncAccounts the
// stored accounts are replaced by txn.Accounts: listed ids are updated, new
// ones inserted, and any account not listed is removed with its receipts.
func (r *PostgresRepository) UpdateTransaction(ctx context.Context, txn *models.CustomerTransaction, syncAccounts bool) error {
	txn.UpdatedAt = time.Now().UTC()

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE customer_transactions
			SET description = $2, declared_total_amount = $3, type = $4, status = $5, updated_at = $6
			WHERE id = $1
		`, txn.ID, txn.Description, txn.DeclaredTotalAmount, txn.Type, txn.Status, txn.UpdatedAt)
		if err != nil {
			return err
		}

		if !syncAccounts {
			return nil
		}

		for i := range txn.Accounts {
			if err := upsertAccount(ctx, tx, txn.ID, &txn.Accounts[i]); err != nil {
				return err
			}
		}

		keep := lo.Map(txn.Accounts, func(a models.BankAccount, _ int) string { return a.ID })
		_, err = tx.ExecContext(ctx,
			`DELETE FROM bank_accounts WHERE transaction_id = $1 AND NOT (id = ANY($2))`,
			txn.ID, pq.Array(keep))
		return err
	})
}

// DeleteTransaction deletes a transaction; accounts and receipts cascade
func (r *PostgresRepository) DeleteTransaction(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM customer_transactions WHERE id = $1`, id)
	return err
}

// GetAccount gets a bank account without its receipts
func (r *PostgresRepository) GetAccount(ctx context.Context, id string) (*models.BankAccount, error) {
	var account models.BankAccount
	found, err := getOne(ctx, r.db, &account, `SELECT * FROM bank_accounts WHERE id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &account, nil
}
