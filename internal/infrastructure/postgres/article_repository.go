package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

// ArticleRepo implementación del puerto ArticleRepository sobre PostgreSQL.
type ArticleRepo struct {
	pool *pgxpool.Pool
}

// NewArticleRepository construye el adaptador de lectura de artículos.
func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool}
}

// GetByCode obtiene un artículo por código. Devuelve nil si no existe.
func (r *ArticleRepo) GetByCode(ctx context.Context, code string) (*entity.Article, error) {
	query := `
		SELECT code, description, category, unit_measure, safety_stock, default_supplier, archived, created_at, updated_at
		FROM articles WHERE code = $1`
	var a entity.Article
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&a.Code, &a.Description, &a.Category, &a.UnitMeasure, &a.SafetyStock,
		&a.DefaultSupplier, &a.Archived, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &a, nil
}

// List lista artículos; por defecto excluye los archiviati.
func (r *ArticleRepo) List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Article, error) {
	query := `
		SELECT code, description, category, unit_measure, safety_stock, default_supplier, archived, created_at, updated_at
		FROM articles`
	if !includeArchived {
		query += ` WHERE archived = false`
	}
	query += ` ORDER BY code LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Article
	for rows.Next() {
		var a entity.Article
		if err := rows.Scan(&a.Code, &a.Description, &a.Category, &a.UnitMeasure, &a.SafetyStock,
			&a.DefaultSupplier, &a.Archived, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
