package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventorySession es una sesión de reconciliación física limitada a una ubicación.
// SubmittedAt == nil: abierta, las righe aceptan conteos.
// SubmittedAt != nil: cerrada e inmutable; los movimientos correctivos ya fueron emitidos.
type InventorySession struct {
	ID          int64
	Site        string
	Area        string
	Note        string
	CreatedBy   string
	CreatedAt   time.Time
	SubmittedAt *time.Time
}

// Open indica si la sesión sigue abierta.
func (s *InventorySession) Open() bool {
	return s.SubmittedAt == nil
}

// InventoryLine fotografía la giacenza teórica de un (artículo, lote) al crear
// la sesión y acepta después un conteo físico opcional. Counted == nil significa
// "no contado" y se salta en el envío (no es un conteo de cero).
type InventoryLine struct {
	ID          int64
	SessionID   int64
	Article     string
	LotID       string
	UnitMeasure string
	Theoretical decimal.Decimal
	Counted     *decimal.Decimal
}

// Difference devuelve counted - theoretical, o nil si la riga no fue contada.
func (l *InventoryLine) Difference() *decimal.Decimal {
	if l.Counted == nil {
		return nil
	}
	d := l.Counted.Sub(l.Theoretical)
	return &d
}
