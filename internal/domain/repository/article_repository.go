package repository

import (
	"context"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// ArticleRepository define el puerto de lectura de artículos.
// El CRUD de anagrafica vive fuera del core; aquí solo se resuelven referencias.
type ArticleRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Article, error)
	List(ctx context.Context, includeArchived bool, limit, offset int) ([]*entity.Article, error)
}
