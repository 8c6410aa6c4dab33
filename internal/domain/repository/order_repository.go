package repository

import (
	"context"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia de ordini a fornitore.
// CreateHeader y CreateLine asignan el ID generado sobre la entidad.
type OrderRepository interface {
	CreateHeader(ctx context.Context, order *entity.Order) error
	CreateLine(ctx context.Context, line *entity.OrderLine) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	GetLine(ctx context.Context, lineID int64) (*entity.OrderLine, error)
	ListLines(ctx context.Context, orderID int64) ([]*entity.OrderLine, error)
}
