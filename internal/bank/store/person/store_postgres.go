package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/platform/tx"
)

type PostgresDonorStore struct {
	db *sql.DB
}

func NewPostgresDonorStore(db *sql.DB) *PostgresDonorStore {
	return &PostgresDonorStore{db: db}
}

func (s *PostgresDonorStore) FindByID(ctx context.Context, id string) (bank.Donor, error) {
	var (
		donor     bank.Donor
		bloodType string
		lastDate  sql.NullTime
	)
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, blood_type, last_donation_date FROM donors WHERE id = $1
	`, id).Scan(&donor.ID, &bloodType, &lastDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bank.Donor{}, sentinel.ErrNotFound
		}
		return bank.Donor{}, fmt.Errorf("find donor: %w", err)
	}
	donor.BloodType = bank.BloodType(bloodType)
	if lastDate.Valid {
		day := bank.Date(lastDate.Time)
		donor.LastDonationDate = &day
	}
	return donor, nil
}

func (s *PostgresDonorStore) Save(ctx context.Context, donor bank.Donor) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO donors (id, blood_type, last_donation_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			blood_type = EXCLUDED.blood_type,
			last_donation_date = EXCLUDED.last_donation_date
	`, donor.ID, string(donor.BloodType), donor.LastDonationDate)
	if err != nil {
		return fmt.Errorf("save donor: %w", err)
	}
	return nil
}

func (s *PostgresDonorStore) SetLastDonationDate(ctx context.Context, id string, date time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE donors SET last_donation_date = $2 WHERE id = $1
	`, id, bank.Date(date))
	if err != nil {
		return fmt.Errorf("set last donation date: %w", err)
	}
	return requireRow(res)
}

type PostgresRecipientStore struct {
	db *sql.DB
}

func NewPostgresRecipientStore(db *sql.DB) *PostgresRecipientStore {
	return &PostgresRecipientStore{db: db}
}

func (s *PostgresRecipientStore) FindByID(ctx context.Context, id string) (bank.Recipient, error) {
	var (
		recipient bank.Recipient
		bloodType string
		lastDate  sql.NullTime
	)
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, blood_type, last_request_date FROM recipients WHERE id = $1
	`, id).Scan(&recipient.ID, &bloodType, &lastDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bank.Recipient{}, sentinel.ErrNotFound
		}
		return bank.Recipient{}, fmt.Errorf("find recipient: %w", err)
	}
	recipient.BloodType = bank.BloodType(bloodType)
	if lastDate.Valid {
		day := bank.Date(lastDate.Time)
		recipient.LastRequestDate = &day
	}
	return recipient, nil
}

func (s *PostgresRecipientStore) Save(ctx context.Context, recipient bank.Recipient) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO recipients (id, blood_type, last_request_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			blood_type = EXCLUDED.blood_type,
			last_request_date = EXCLUDED.last_request_date
	`, recipient.ID, string(recipient.BloodType), recipient.LastRequestDate)
	if err != nil {
		return fmt.Errorf("save recipient: %w", err)
	}
	return nil
}

func (s *PostgresRecipientStore) SetLastRequestDate(ctx context.Context, id string, date time.Time) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE recipients SET last_request_date = $2 WHERE id = $1
	`, id, bank.Date(date))
	if err != nil {
		return fmt.Errorf("set last request date: %w", err)
	}
	return requireRow(res)
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
