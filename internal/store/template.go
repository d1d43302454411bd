package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"galaxyco.ai/api-server/internal/model"
)

type templateStore struct {
	q querier
}

const templateColumns = `id, name, slug, description, short_description, category,
       config, author_id, author_name, tags, install_count, rating, review_count,
       installs_24h, installs_7d, installs_30d, trending_score,
       is_published, is_featured, published_at, created_at, updated_at`

func (s *templateStore) GetByID(ctx context.Context, id uuid.UUID) (*model.AgentTemplate, error) {
	row := s.q.QueryRow(ctx, `SELECT `+templateColumns+` FROM agent_templates WHERE id = $1`, id)
	return scanTemplate(row)
}

func (s *templateStore) GetBySlug(ctx context.Context, slug string) (*model.AgentTemplate, error) {
	row := s.q.QueryRow(ctx, `SELECT `+templateColumns+` FROM agent_templates WHERE slug = $1`, slug)
	return scanTemplate(row)
}

func (s *templateStore) Create(ctx context.Context, tpl *model.AgentTemplate) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO agent_templates (id, name, slug, description, short_description,
			category, config, author_id, author_name, tags, is_published, is_featured, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, '{}'::jsonb), $8, $9, $10, $11, $12,
			CASE WHEN $11 THEN NOW() ELSE NULL END)
		RETURNING `+templateColumns,
		tpl.ID, tpl.Name, tpl.Slug, tpl.Description, tpl.ShortDescription,
		tpl.Category, tpl.Config, tpl.AuthorID, tpl.AuthorName, tpl.Tags,
		tpl.IsPublished, tpl.IsFeatured,
	)
	stored, err := scanTemplate(row)
	if err != nil {
		return err
	}
	*tpl = *stored
	return nil
}

func (s *templateStore) ListPublished(ctx context.Context, filter TemplateFilter) ([]model.AgentTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM agent_templates WHERE is_published`
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += ` AND category = $1`
	}
	if filter.FeaturedOnly {
		query += ` AND is_featured`
	}

	switch filter.SortBy {
	case "installs":
		query += ` ORDER BY install_count DESC`
	case "rating":
		query += ` ORDER BY rating DESC`
	case "newest":
		query += ` ORDER BY published_at DESC NULLS LAST`
	default:
		query += ` ORDER BY trending_score DESC`
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	if filter.Category != "" {
		query += ` LIMIT $2`
	} else {
		query += ` LIMIT $1`
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.AgentTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *tpl)
	}
	return result, rows.Err()
}

// RecordInstall bumps all install counters and recomputes the trending score
// in one statement, so concurrent installs never lose increments. The score
// weighs last-24h installs at 10x, last-7d at 3x, plus the stored rating.
func (s *templateStore) RecordInstall(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE agent_templates
		SET install_count = install_count + 1,
		    installs_24h = installs_24h + 1,
		    installs_7d = installs_7d + 1,
		    installs_30d = installs_30d + 1,
		    trending_score = (installs_24h + 1) * 10 + (installs_7d + 1) * 3 + rating,
		    updated_at = NOW()
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *templateStore) ApplyRating(ctx context.Context, id uuid.UUID, rating, reviewCount int) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE agent_templates
		SET rating = $2,
		    review_count = $3,
		    trending_score = installs_24h * 10 + installs_7d * 3 + $2,
		    updated_at = NOW()
		WHERE id = $1`,
		id, rating, reviewCount,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (*model.AgentTemplate, error) {
	var t model.AgentTemplate
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.Description,
		&t.ShortDescription,
		&t.Category,
		&t.Config,
		&t.AuthorID,
		&t.AuthorName,
		&t.Tags,
		&t.InstallCount,
		&t.Rating,
		&t.ReviewCount,
		&t.Installs24h,
		&t.Installs7d,
		&t.Installs30d,
		&t.TrendingScore,
		&t.IsPublished,
		&t.IsFeatured,
		&t.PublishedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

type agentStore struct {
	q querier
}

const agentColumns = `id, workspace_id, name, description, status, config,
       source_template_id, created_by, created_at, updated_at`

func (s *agentStore) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.Agent, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+agentColumns+`
		FROM agents
		WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	return scanAgent(row)
}

func (s *agentStore) Create(ctx context.Context, agent *model.Agent) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO agents (id, workspace_id, name, description, status, config,
			source_template_id, created_by)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, '{}'::jsonb), $7, $8)
		RETURNING `+agentColumns,
		agent.ID, agent.WorkspaceID, agent.Name, agent.Description, agent.Status,
		agent.Config, agent.SourceTemplateID, agent.CreatedBy,
	)
	stored, err := scanAgent(row)
	if err != nil {
		return err
	}
	*agent = *stored
	return nil
}

func (s *agentStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Agent, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+agentColumns+`
		FROM agents
		WHERE workspace_id = $1
		ORDER BY created_at DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanAgent(row pgx.Row) (*model.Agent, error) {
	var a model.Agent
	err := row.Scan(
		&a.ID,
		&a.WorkspaceID,
		&a.Name,
		&a.Description,
		&a.Status,
		&a.Config,
		&a.SourceTemplateID,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
