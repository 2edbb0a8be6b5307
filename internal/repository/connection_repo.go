package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"match-coach/internal/domain"
)

// ConnectionRepository define el contrato de persistencia para conexiones.
// Es el colaborador que consume los parches producidos por el extractor.
type ConnectionRepository interface {
	Create(ctx context.Context, conn domain.Connection) error
	GetByID(ctx context.Context, id string) (domain.Connection, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Connection, error)
	ApplyContextUpdates(ctx context.Context, id string, updates domain.ContextUpdates) error
}

// PgConnectionRepository implementa ConnectionRepository usando pgxpool.
type PgConnectionRepository struct {
	pool *pgxpool.Pool
}

func NewPgConnectionRepository(pool *pgxpool.Pool) *PgConnectionRepository {
	return &PgConnectionRepository{pool: pool}
}

func (r *PgConnectionRepository) Create(ctx context.Context, conn domain.Connection) error {
	const query = `
		INSERT INTO connections (id, user_id, name, platform, current_stage, hobbies, feelings, communication_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		conn.ID,
		conn.UserID,
		conn.Name,
		conn.Platform,
		conn.CurrentStage,
		conn.Hobbies,
		conn.Feelings,
		conn.CommunicationNotes,
		conn.CreatedAt,
		conn.UpdatedAt,
	)
	return err
}

func (r *PgConnectionRepository) GetByID(ctx context.Context, id string) (domain.Connection, error) {
	const query = `
		SELECT id, user_id, name, platform, current_stage, hobbies, feelings, communication_notes, last_analyzed_at, created_at, updated_at
		FROM connections
		WHERE id = $1
	`
	var c domain.Connection
	var lastAnalyzed *time.Time
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Platform,
		&c.CurrentStage,
		&c.Hobbies,
		&c.Feelings,
		&c.CommunicationNotes,
		&lastAnalyzed,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Connection{}, err
	}
	if lastAnalyzed != nil {
		c.LastAnalyzedAt = *lastAnalyzed
	}
	return c, err
}

func (r *PgConnectionRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Connection, error) {
	const query = `
		SELECT id, user_id, name, platform, current_stage, hobbies, feelings, communication_notes, last_analyzed_at, created_at, updated_at
		FROM connections
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var c domain.Connection
		var lastAnalyzed *time.Time
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.Platform,
			&c.CurrentStage,
			&c.Hobbies,
			&c.Feelings,
			&c.CommunicationNotes,
			&lastAnalyzed,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if lastAnalyzed != nil {
			c.LastAnalyzedAt = *lastAnalyzed
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// ApplyContextUpdates mezcla un parche sobre el registro: el stage sobreescribe,
// los hobbies se unen sin duplicar, feelings y notas se anexan.
func (r *PgConnectionRepository) ApplyContextUpdates(ctx context.Context, id string, updates domain.ContextUpdates) error {
	if updates.IsEmpty() {
		return nil
	}

	conn, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if updates.CurrentStage != "" {
		conn.CurrentStage = updates.CurrentStage
	}
	if len(updates.NewHobbies) > 0 {
		existing := make(map[string]struct{}, len(conn.Hobbies))
		for _, h := range conn.Hobbies {
			existing[h] = struct{}{}
		}
		for _, h := range updates.NewHobbies {
			if _, ok := existing[h]; !ok {
				conn.Hobbies = append(conn.Hobbies, h)
			}
		}
	}
	if updates.UpdatedFeelings != "" {
		conn.Feelings = updates.UpdatedFeelings
	}
	if updates.CommunicationChanges != "" {
		if conn.CommunicationNotes != "" {
			conn.CommunicationNotes += "\n"
		}
		conn.CommunicationNotes += updates.CommunicationChanges
	}

	const query = `
		UPDATE connections
		SET current_stage = $2, hobbies = $3, feelings = $4, communication_notes = $5, last_analyzed_at = $6, updated_at = $6
		WHERE id = $1
	`
	now := time.Now().UTC()
	_, err = r.pool.Exec(ctx, query,
		id,
		conn.CurrentStage,
		conn.Hobbies,
		conn.Feelings,
		conn.CommunicationNotes,
		now,
	)
	return err
}
