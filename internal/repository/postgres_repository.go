package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy.
// Single-row getters return (nil, nil) when the row does not exist.
type Repository interface {
	// Admin operations
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*models.Admin, error)
	UpsertAdmin(ctx context.Context, admin *models.Admin) error

	// Customer operations
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomerByID(ctx context.Context, id string) (*models.Customer, error)
	GetCustomerByUsername(ctx context.Context, username string) (*models.Customer, error)
	GetCustomerByUniqueCode(ctx context.Context, code string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
	CountCustomerTransactions(ctx context.Context, customerID string) (int, error)

	// Connection operations
	ListConnections(ctx context.Context, ownerID string) ([]models.ConnectionWithCustomer, error)
	GetConnection(ctx context.Context, id string) (*models.CustomerConnection, error)
	FindConnection(ctx context.Context, ownerID, connectedID string) (*models.CustomerConnection, error)
	UpdateConnectionName(ctx context.Context, id, customName string) error
	DeleteConnection(ctx context.Context, id string) error
	CreateOfflineCustomer(ctx context.Context, customer *models.Customer, conn *models.CustomerConnection) error

	// Request operations
	CreateRequest(ctx context.Context, req *models.CustomerRequest) error
	GetRequest(ctx context.Context, id string) (*models.CustomerRequest, error)
	FindPendingRequestBetween(ctx context.Context, customerA, customerB string) (*models.CustomerRequest, error)
	ListReceivedRequests(ctx context.Context, customerID string) ([]models.CustomerRequest, error)
	ListSentRequests(ctx context.Context, customerID string) ([]models.CustomerRequest, error)
	AcceptRequest(ctx context.Context, requestID string, connections []*models.CustomerConnection) error
	RejectRequest(ctx context.Context, requestID string) error

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *models.CustomerTransaction) error
	GetTransaction(ctx context.Context, id string) (*models.CustomerTransaction, error)
	ListTransactions(ctx context.Context, customerID string) ([]models.CustomerTransaction, error)
	UpdateTransaction(ctx context.Context, txn *models.CustomerTransaction, syncAccounts bool) error
	DeleteTransaction(ctx context.Context, id string) error
	GetAccount(ctx context.Context, id string) (*models.BankAccount, error)

	// Receipt operations
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error
	DeleteReceipt(ctx context.Context, id string) error
	ListCustomerReceipts(ctx context.Context, customerID string) ([]models.ReceiptRecord, error)
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// withTx runs fn inside a database transaction, rolling back when fn fails
func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// translateError maps unique violations to conflicts; other errors pass through
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}

	switch pqErr.Constraint {
	case "customers_username_key", "admins_username_key":
		return apperrors.ErrUsernameTaken
	case "customers_unique_code_key":
		return apperrors.ErrUniqueCodeTaken
	case "customer_connections_owner_id_connected_customer_id_key":
		return apperrors.Conflict("customer is already in your list")
	}
	return apperrors.Conflict("record already exists")
}

// getOne runs a single-row query, mapping "no rows" to (false, nil)
func getOne(ctx context.Context, q sqlx.QueryerContext, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func stamp(id *string, createdAt, updatedAt *time.Time) {
	// Generate a new UUID if not provided
	if *id == "" {
		*id = uuid.New().String()
	}
	now := time.Now().UTC()
	if createdAt != nil {
		*createdAt = now
	}
	if updatedAt != nil {
		*updatedAt = now
	}
}

// Admin repository methods
func (r *PostgresRepository) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	found, err := getOne(ctx, r.db, &admin, `SELECT * FROM admins WHERE username = $1`, username)
	if err != nil || !found {
		return nil, err
	}
	return &admin, nil
}

func (r *PostgresRepository) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	found, err := getOne(ctx, r.db, &admin, `SELECT * FROM admins WHERE id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &admin, nil
}

// UpsertAdmin inserts the admin, or refreshes the password of an existing admin with the same username
func (r *PostgresRepository) UpsertAdmin(ctx context.Context, admin *models.Admin) error {
	stamp(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)

	query := `
		INSERT INTO admins (id, username, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		admin.ID, admin.Username, admin.Password, admin.CreatedAt, admin.UpdatedAt,
	).Scan(&admin.ID, &admin.CreatedAt)
}

// Customer repository methods
const insertCustomerQuery = `
	INSERT INTO customers (id, name, username, password, phone, address, unique_code,
		preferred_currency, offline, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func insertCustomer(ctx context.Context, e sqlx.ExecerContext, c *models.Customer) error {
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if c.PreferredCurrency == "" {
		c.PreferredCurrency = models.CurrencyToman
	}

	_, err := e.ExecContext(ctx, insertCustomerQuery,
		c.ID, c.Name, c.Username, c.Password, c.Phone, c.Address, c.UniqueCode,
		c.PreferredCurrency, c.Offline, c.CreatedAt, c.UpdatedAt)
	return translateError(err)
}

func (r *PostgresRepository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return insertCustomer(ctx, r.db, customer)
}

func (r *PostgresRepository) getCustomer(ctx context.Context, where string, arg interface{}) (*models.Customer, error) {
	var customer models.Customer
	found, err := getOne(ctx, r.db, &customer, `SELECT * FROM customers WHERE `+where+` = $1`, arg)
	if err != nil || !found {
		return nil, err
	}
	return &customer, nil
}

func (r *PostgresRepository) GetCustomerByID(ctx context.Context, id string) (*models.Customer, error) {
	return r.getCustomer(ctx, "id", id)
}

func (r *PostgresRepository) GetCustomerByUsername(ctx context.Context, username string) (*models.Customer, error) {
	return r.getCustomer(ctx, "username", username)
}

func (r *PostgresRepository) GetCustomerByUniqueCode(ctx context.Context, code string) (*models.Customer, error) {
	return r.getCustomer(ctx, "unique_code", code)
}

func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	err := r.db.SelectContext(ctx, &customers, `SELECT * FROM customers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *PostgresRepository) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE customers
		SET name = $2, username = $3, password = $4, phone = $5, address = $6,
			unique_code = $7, preferred_currency = $8, updated_at = $9
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Username, c.Password, c.Phone, c.Address,
		c.UniqueCode, c.PreferredCurrency, c.UpdatedAt)
	return translateError(err)
}

// DeleteCustomer removes the customer together with their connections and
// requests in both directions. Transactions are never cascaded; callers must
// check CountCustomerTransactions first.
func (r *PostgresRepository) DeleteCustomer(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM customer_connections WHERE owner_id = $1 OR connected_customer_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM customer_requests WHERE from_customer_id = $1 OR to_customer_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
		return err
	})
}

func (r *PostgresRepository) CountCustomerTransactions(ctx context.Context, customerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM customer_transactions WHERE from_customer_id = $1 OR to_customer_id = $1`,
		customerID)
	return count, err
}
