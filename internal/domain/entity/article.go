package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Article representa un artículo rastreable del magazzino.
// La identidad (Code) es inmutable; los campos descriptivos pueden cambiar.
// Nunca se elimina físicamente: Archived = true lo retira de los listados
// pero los movimientos históricos siguen resolviendo su referencia.
type Article struct {
	Code            string // código interno, único
	Description     string
	Category        string
	UnitMeasure     string
	SafetyStock     *decimal.Decimal // scorta minima; nil = sin mínimo definido
	DefaultSupplier string
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
