package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// InventoryRepository define el puerto de persistencia de sesiones de inventario.
type InventoryRepository interface {
	CreateSession(ctx context.Context, session *entity.InventorySession) error
	CreateLine(ctx context.Context, line *entity.InventoryLine) error
	GetSession(ctx context.Context, id int64) (*entity.InventorySession, error)
	ListSessions(ctx context.Context, site, area string, onlyOpen bool) ([]*entity.InventorySession, error)
	ListLines(ctx context.Context, sessionID int64) ([]*entity.InventoryLine, error)
	GetLine(ctx context.Context, sessionID, lineID int64) (*entity.InventoryLine, error)
	UpdateCount(ctx context.Context, lineID int64, counted decimal.Decimal) error

	// ClaimSubmission marca la sesión como enviada SOLO si sigue abierta
	// (UPDATE condicional sobre submitted_at IS NULL). Devuelve false si otra
	// petición ya la envió: es la guardia at-most-once del reconciler.
	ClaimSubmission(ctx context.Context, sessionID int64, at time.Time) (bool, error)
}
