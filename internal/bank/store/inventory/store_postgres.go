package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/platform/tx"
)

// PostgresStore persists blood units in PostgreSQL. Every query runs against
// the transaction carried in context when there is one, so allocation joins
// the enclosing unit of work.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, unit bank.BloodUnit) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO blood_units (id, blood_type, quantity_ml, donor_id, collection_date, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, unit.ID, string(unit.BloodType), unit.QuantityML, unit.DonorID, unit.CollectionDate, unit.ExpiryDate)
	if err != nil {
		return fmt.Errorf("add blood unit: %w", err)
	}
	return nil
}

func (s *PostgresStore) AvailableQuantity(ctx context.Context, bloodType bank.BloodType, today time.Time) (int, error) {
	var total int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity_ml), 0)
		FROM blood_units
		WHERE blood_type = $1 AND expiry_date > $2
	`, string(bloodType), bank.Date(today)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum available quantity: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) ListFIFO(ctx context.Context, bloodType bank.BloodType, today time.Time) ([]bank.BloodUnit, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, blood_type, quantity_ml, donor_id, collection_date, expiry_date
		FROM blood_units
		WHERE blood_type = $1 AND expiry_date > $2
		ORDER BY collection_date ASC, id ASC
	`, string(bloodType), bank.Date(today))
	if err != nil {
		return nil, fmt.Errorf("list units fifo: %w", err)
	}
	defer rows.Close()
	return scanUnits(rows)
}

func (s *PostgresStore) SetQuantity(ctx context.Context, id uuid.UUID, quantityML int) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE blood_units SET quantity_ml = $2 WHERE id = $1
	`, id, quantityML)
	if err != nil {
		return fmt.Errorf("set unit quantity: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		DELETE FROM blood_units WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) ListByDonor(ctx context.Context, donorID string) ([]bank.BloodUnit, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT id, blood_type, quantity_ml, donor_id, collection_date, expiry_date
		FROM blood_units
		WHERE donor_id = $1
		ORDER BY collection_date DESC
	`, donorID)
	if err != nil {
		return nil, fmt.Errorf("list units by donor: %w", err)
	}
	defer rows.Close()
	return scanUnits(rows)
}

func scanUnits(rows *sql.Rows) ([]bank.BloodUnit, error) {
	var units []bank.BloodUnit
	for rows.Next() {
		var (
			unit      bank.BloodUnit
			bloodType string
			donorID   sql.NullString
		)
		if err := rows.Scan(&unit.ID, &bloodType, &unit.QuantityML, &donorID, &unit.CollectionDate, &unit.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan blood unit: %w", err)
		}
		unit.BloodType = bank.BloodType(bloodType)
		if donorID.Valid {
			unit.DonorID = &donorID.String
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood units: %w", err)
	}
	return units, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
