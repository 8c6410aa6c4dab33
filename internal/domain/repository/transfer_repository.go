package repository

import (
	"context"
	"time"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// TransferFilter filtros para listar trasferimenti.
type TransferFilter struct {
	Article  string
	FromSite string
	ToSite   string
	From     *time.Time
	To       *time.Time
}

// TransferRepository define el puerto de persistencia de trasferimenti.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
}
