package stock

import "github.com/shopspring/decimal"

// PricedLoad es la proyección mínima de un movimiento LOAD con precio,
// entrada del motor de valoración.
type PricedLoad struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// WeightedAverageCost calcula el costo medio ponderado global de un artículo:
// Σ(cantidad·precio) / Σ(cantidad) sobre todos los LOAD con precio, de todas
// las ubicaciones (el costo no está ligado a la sede: los trasferimenti nunca
// entran en este cálculo). Redondeo half-up a 4 decimales.
// Devuelve nil si no hay ningún carico que califique.
func WeightedAverageCost(loads []PricedLoad) *decimal.Decimal {
	totalQty := decimal.Zero
	totalValue := decimal.Zero

	for _, l := range loads {
		if l.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		totalQty = totalQty.Add(l.Quantity)
		totalValue = totalValue.Add(l.Quantity.Mul(l.UnitPrice))
	}

	if totalQty.IsZero() {
		return nil
	}
	avg := totalValue.Div(totalQty).Round(4)
	return &avg
}
