package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"match-coach/internal/domain"
)

// PgMetricRepository persiste snapshots de metricas de aprendizaje para que un
// despliegue sobreviva reinicios. Implementa service.MetricSnapshotter.
type PgMetricRepository struct {
	pool *pgxpool.Pool
}

func NewPgMetricRepository(pool *pgxpool.Pool) *PgMetricRepository {
	return &PgMetricRepository{pool: pool}
}

func (r *PgMetricRepository) Save(ctx context.Context, m domain.LearningMetric) error {
	const query = `
		INSERT INTO learning_metrics (user_id, prompt_type, ai_provider, success_rate, usage_frequency, average_rating, context_similarity, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, prompt_type, ai_provider)
		DO UPDATE SET success_rate = $4, usage_frequency = $5, average_rating = $6, context_similarity = $7, last_updated = $8
	`
	_, err := r.pool.Exec(ctx, query,
		m.UserID,
		m.PromptType,
		m.AIProvider,
		m.SuccessRate,
		m.UsageFrequency,
		m.AverageRating,
		m.ContextSimilarity,
		m.LastUpdated,
	)
	return err
}

func (r *PgMetricRepository) LoadAll(ctx context.Context) ([]domain.LearningMetric, error) {
	const query = `
		SELECT user_id, prompt_type, ai_provider, success_rate, usage_frequency, average_rating, context_similarity, last_updated
		FROM learning_metrics
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []domain.LearningMetric
	for rows.Next() {
		var m domain.LearningMetric
		if err := rows.Scan(
			&m.UserID,
			&m.PromptType,
			&m.AIProvider,
			&m.SuccessRate,
			&m.UsageFrequency,
			&m.AverageRating,
			&m.ContextSimilarity,
			&m.LastUpdated,
		); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
