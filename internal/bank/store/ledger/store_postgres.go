package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/tx"
)

// PostgresStore persists ledger rows in PostgreSQL, joining any transaction
// carried in context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, request bank.BloodRequest) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO blood_requests (id, blood_type, quantity_ml, recipient_id, request_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, request.ID, string(request.BloodType), request.QuantityML, request.RecipientID, request.RequestDate, string(request.Status))
	if err != nil {
		return fmt.Errorf("append blood request: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipientID string) ([]bank.BloodRequest, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, blood_type, quantity_ml, recipient_id, request_date, status
		FROM blood_requests
		WHERE recipient_id = $1
		ORDER BY request_date DESC
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list requests by recipient: %w", err)
	}
	defer rows.Close()

	var requests []bank.BloodRequest
	for rows.Next() {
		var (
			request     bank.BloodRequest
			bloodType   string
			status      string
			recipientID sql.NullString
		)
		if err := rows.Scan(&request.ID, &bloodType, &request.QuantityML, &recipientID, &request.RequestDate, &status); err != nil {
			return nil, fmt.Errorf("scan blood request: %w", err)
		}
		request.BloodType = bank.BloodType(bloodType)
		request.Status = bank.RequestStatus(status)
		if recipientID.Valid {
			request.RecipientID = &recipientID.String
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood requests: %w", err)
	}
	return requests, nil
}
