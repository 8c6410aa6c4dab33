package repository

import (
	"context"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// LocationRepository define el puerto de lectura de ubicaciones (sede, sezione).
type LocationRepository interface {
	Get(ctx context.Context, site, area string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}
