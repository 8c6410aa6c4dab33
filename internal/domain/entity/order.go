package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order es la testata de un ordine a fornitore.
type Order struct {
	ID        int64
	OrderDate time.Time
	Number    string
	Supplier  string
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}

// OrderLine es una riga d'ordine. PriceSnapshot congela el costo medio del
// artículo en el momento de la creación del ordine y no se recalcula nunca.
// El estado de evasione es derivado (residuo), no almacenado.
type OrderLine struct {
	ID              int64
	OrderID         int64
	Article         string
	Description     string
	UnitMeasure     string
	OrderedQty      decimal.Decimal
	ExpectedArrival *time.Time
	LastPrice       *decimal.Decimal
	PriceSnapshot   *decimal.Decimal // costo medio al crear el ordine; nil si el artículo no tenía carichi
}

// LineResidual es el resultado del tracker de evasione: cantidad aún debida por riga.
type LineResidual struct {
	LineID     int64
	Article    string
	OrderedQty decimal.Decimal
	Received   decimal.Decimal
	Residual   decimal.Decimal // OrderedQty - Received; <= 0 significa riga evasa
}
