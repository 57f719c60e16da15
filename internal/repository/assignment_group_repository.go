package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suportehub/helpdesk-service/internal/domain"
)

// AssignmentGroupRepository manages routing groups.
type AssignmentGroupRepository interface {
	Create(ctx context.Context, group *domain.AssignmentGroup) error
	Update(ctx context.Context, group *domain.AssignmentGroup) error
	GetByID(ctx context.Context, id string) (*domain.AssignmentGroup, error)
	GetByKey(ctx context.Context, key string) (*domain.AssignmentGroup, error)
	List(ctx context.Context) ([]domain.AssignmentGroup, error)
	Delete(ctx context.Context, id string) error
}

type assignmentGroupRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentGroupRepository builds repository.
func NewAssignmentGroupRepository(pool *pgxpool.Pool) AssignmentGroupRepository {
	return &assignmentGroupRepository{pool: pool}
}

func (r *assignmentGroupRepository) Create(ctx context.Context, group *domain.AssignmentGroup) error {
	const query = `
        INSERT INTO assignment_groups (key, name, color, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		group.Key,
		group.Name,
		group.Color,
		group.Description,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
}

func (r *assignmentGroupRepository) Update(ctx context.Context, group *domain.AssignmentGroup) error {
	const query = `
        UPDATE assignment_groups SET key=$1, name=$2, color=$3, description=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		group.Key,
		group.Name,
		group.Color,
		group.Description,
		group.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assignmentGroupRepository) GetByID(ctx context.Context, id string) (*domain.AssignmentGroup, error) {
	const query = `
        SELECT id, key, name, color, description, created_at, updated_at
        FROM assignment_groups WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *assignmentGroupRepository) GetByKey(ctx context.Context, key string) (*domain.AssignmentGroup, error) {
	const query = `
        SELECT id, key, name, color, description, created_at, updated_at
        FROM assignment_groups WHERE key=$1`
	return r.fetchSingle(ctx, query, key)
}

func (r *assignmentGroupRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.AssignmentGroup, error) {
	var group domain.AssignmentGroup
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&group.ID,
		&group.Key,
		&group.Name,
		&group.Color,
		&group.Description,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *assignmentGroupRepository) List(ctx context.Context) ([]domain.AssignmentGroup, error) {
	const query = `
        SELECT id, key, name, color, description, created_at, updated_at
        FROM assignment_groups ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AssignmentGroup
	for rows.Next() {
		var group domain.AssignmentGroup
		if err := rows.Scan(
			&group.ID,
			&group.Key,
			&group.Name,
			&group.Color,
			&group.Description,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, group)
	}
	return result, rows.Err()
}

func (r *assignmentGroupRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assignment_groups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
