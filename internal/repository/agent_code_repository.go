package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suportehub/helpdesk-service/internal/domain"
)

// ErrCodeSpent signals the atomic redemption found the code already used.
var ErrCodeSpent = errors.New("agent code already used")

// AgentCodeRepository manages single-use invitation codes.
type AgentCodeRepository interface {
	Create(ctx context.Context, code *domain.AgentCode) error
	GetByCode(ctx context.Context, code string) (*domain.AgentCode, error)
	List(ctx context.Context) ([]domain.AgentCode, error)
	// Consume atomically marks the code used and records the redeeming user
	// in one statement; it returns ErrCodeSpent when the code was already
	// used by the time the update ran.
	Consume(ctx context.Context, code, userID string) error
}

type agentCodeRepository struct {
	pool *pgxpool.Pool
}

// NewAgentCodeRepository builds repository.
func NewAgentCodeRepository(pool *pgxpool.Pool) AgentCodeRepository {
	return &agentCodeRepository{pool: pool}
}

func (r *agentCodeRepository) Create(ctx context.Context, code *domain.AgentCode) error {
	const query = `
        INSERT INTO agent_codes (code, used, used_by)
        VALUES ($1,$2,$3)
        ON CONFLICT (code) DO NOTHING
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		code.Code,
		code.Used,
		code.UsedBy,
	).Scan(&code.ID, &code.CreatedAt)
	if err == pgx.ErrNoRows {
		// conflict with an existing code; treat as a no-op like the seeder
		return nil
	}
	return err
}

func (r *agentCodeRepository) GetByCode(ctx context.Context, code string) (*domain.AgentCode, error) {
	const query = `
        SELECT id, code, used, used_by, created_at
        FROM agent_codes WHERE code=$1`
	var record domain.AgentCode
	if err := r.pool.QueryRow(ctx, query, code).Scan(
		&record.ID,
		&record.Code,
		&record.Used,
		&record.UsedBy,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *agentCodeRepository) List(ctx context.Context) ([]domain.AgentCode, error) {
	const query = `
        SELECT id, code, used, used_by, created_at
        FROM agent_codes ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AgentCode
	for rows.Next() {
		var record domain.AgentCode
		if err := rows.Scan(
			&record.ID,
			&record.Code,
			&record.Used,
			&record.UsedBy,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *agentCodeRepository) Consume(ctx context.Context, code, userID string) error {
	const query = `
        UPDATE agent_codes SET used=TRUE, used_by=$2
        WHERE code=$1 AND used=FALSE`
	cmd, err := r.pool.Exec(ctx, query, code, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCodeSpent
	}
	return nil
}
