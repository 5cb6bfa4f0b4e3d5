package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

// connectionRow is the flat scan target for a connection joined with its peer
type connectionRow struct {
	models.CustomerConnection
	PeerName       string  `db:"peer_name"`
	PeerUsername   *string `db:"peer_username"`
	PeerUniqueCode *string `db:"peer_unique_code"`
	PeerOffline    bool    `db:"peer_offline"`
}

const selectRequestQuery = `
	SELECT r.*, fc.name AS from_customer_name, tc.name AS to_customer_name
	FROM customer_requests r
	JOIN customers fc ON fc.id = r.from_customer_id
	JOIN customers tc ON tc.id = r.to_customer_id
`

func (r *PostgresRepository) ListConnections(ctx context.Context, ownerID string) ([]models.ConnectionWithCustomer, error) {
	query := `
		SELECT cc.*, c.name AS peer_name, c.username AS peer_username,
			c.unique_code AS peer_unique_code, c.offline AS peer_offline
		FROM customer_connections cc
		JOIN customers c ON c.id = cc.connected_customer_id
		WHERE cc.owner_id = $1
		ORDER BY cc.created_at DESC
	`

	var rows []connectionRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, err
	}

	connections := make([]models.ConnectionWithCustomer, 0, len(rows))
	for _, row := range rows {
		connections = append(connections, models.ConnectionWithCustomer{
			CustomerConnection: row.CustomerConnection,
			ConnectedCustomer: models.ConnectedCustomer{
				ID:         row.ConnectedCustomerID,
				Name:       row.PeerName,
				Username:   row.PeerUsername,
				UniqueCode: row.PeerUniqueCode,
				Offline:    row.PeerOffline,
			},
		})
	}
	return connections, nil
}

func (r *PostgresRepository) GetConnection(ctx context.Context, id string) (*models.CustomerConnection, error) {
	var conn models.CustomerConnection
	found, err := getOne(ctx, r.db, &conn, `SELECT * FROM customer_connections WHERE id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &conn, nil
}

func (r *PostgresRepository) FindConnection(ctx context.Context, ownerID, connectedID string) (*models.CustomerConnection, error) {
	var conn models.CustomerConnection
	found, err := getOne(ctx, r.db, &conn,
		`SELECT * FROM customer_connections WHERE owner_id = $1 AND connected_customer_id = $2`,
		ownerID, connectedID)
	if err != nil || !found {
		return nil, err
	}
	return &conn, nil
}

func (r *PostgresRepository) UpdateConnectionName(ctx context.Context, id, customName string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE customer_connections SET custom_name = $2 WHERE id = $1`, id, customName)
	return err
}

func (r *PostgresRepository) DeleteConnection(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM customer_connections WHERE id = $1`, id)
	return err
}

func insertConnection(ctx context.Context, e sqlx.ExecerContext, conn *models.CustomerConnection) error {
	stamp(&conn.ID, &conn.CreatedAt, nil)

	_, err := e.ExecContext(ctx, `
		INSERT INTO customer_connections (id, owner_id, connected_customer_id, custom_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, conn.ID, conn.OwnerID, conn.ConnectedCustomerID, conn.CustomName, conn.CreatedAt)
	return translateError(err)
}

// CreateOfflineCustomer inserts an offline customer and the owner's connection to it atomically
func (r *PostgresRepository) CreateOfflineCustomer(ctx context.Context, customer *models.Customer, conn *models.CustomerConnection) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertCustomer(ctx, tx, customer); err != nil {
			return err
		}
		conn.ConnectedCustomerID = customer.ID
		return insertConnection(ctx, tx, conn)
	})
}

// Request repository methods
func (r *PostgresRepository) CreateRequest(ctx context.Context, req *models.CustomerRequest) error {
	stamp(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if req.Status == "" {
		req.Status = models.RequestPending
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customer_requests (id, from_customer_id, to_customer_id, custom_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, req.ID, req.FromCustomerID, req.ToCustomerID, req.CustomName, req.Status, req.CreatedAt, req.UpdatedAt)
	return translateError(err)
}

func (r *PostgresRepository) GetRequest(ctx context.Context, id string) (*models.CustomerRequest, error) {
	var req models.CustomerRequest
	found, err := getOne(ctx, r.db, &req, selectRequestQuery+` WHERE r.id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &req, nil
}

// FindPendingRequestBetween finds a pending request in either direction
func (r *PostgresRepository) FindPendingRequestBetween(ctx context.Context, customerA, customerB string) (*models.CustomerRequest, error) {
	query := selectRequestQuery + `
		WHERE r.status = 'pending'
		AND ((r.from_customer_id = $1 AND r.to_customer_id = $2)
			OR (r.from_customer_id = $2 AND r.to_customer_id = $1))
		LIMIT 1
	`

	var req models.CustomerRequest
	found, err := getOne(ctx, r.db, &req, query, customerA, customerB)
	if err != nil || !found {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresRepository) ListReceivedRequests(ctx context.Context, customerID string) ([]models.CustomerRequest, error) {
	requests := []models.CustomerRequest{}
	err := r.db.SelectContext(ctx, &requests,
		selectRequestQuery+` WHERE r.to_customer_id = $1 AND r.status = 'pending' ORDER BY r.created_at DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PostgresRepository) ListSentRequests(ctx context.Context, customerID string) ([]models.CustomerRequest, error) {
	requests := []models.CustomerRequest{}
	err := r.db.SelectContext(ctx, &requests,
		selectRequestQuery+` WHERE r.from_customer_id = $1 ORDER BY r.created_at DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// AcceptRequest marks a pending request accepted and creates the given
// connections in the same transaction. A request that is no longer pending
// fails with ErrRequestProcessed and nothing is written.
func (r *PostgresRepository) AcceptRequest(ctx context.Context, requestID string, connections []*models.CustomerConnection) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := transitionRequest(ctx, tx, requestID, models.RequestAccepted); err != nil {
			return err
		}

		for _, conn := range connections {
			if err := insertConnectionIfMissing(ctx, tx, conn); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertConnectionIfMissing leaves an existing owner→connected row untouched.
// conn.ID is set to the stored row either way.
func insertConnectionIfMissing(ctx context.Context, tx *sqlx.Tx, conn *models.CustomerConnection) error {
	stamp(&conn.ID, &conn.CreatedAt, nil)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO customer_connections (id, owner_id, connected_customer_id, custom_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, connected_customer_id) DO NOTHING
	`, conn.ID, conn.OwnerID, conn.ConnectedCustomerID, conn.CustomName, conn.CreatedAt)
	if err != nil {
		return translateError(err)
	}

	return tx.GetContext(ctx, conn,
		`SELECT id, owner_id, connected_customer_id, custom_name, created_at
		 FROM customer_connections WHERE owner_id = $1 AND connected_customer_id = $2`,
		conn.OwnerID, conn.ConnectedCustomerID)
}

func (r *PostgresRepository) RejectRequest(ctx context.Context, requestID string) error {
	return transitionRequest(ctx, r.db, requestID, models.RequestRejected)
}

func transitionRequest(ctx context.Context, e sqlx.ExecerContext, requestID, status string) error {
	result, err := e.ExecContext(ctx,
		`UPDATE customer_requests SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'pending'`,
		requestID, status, time.Now().UTC())
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrRequestProcessed
	}
	return nil
}
