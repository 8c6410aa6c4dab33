package stock

import "github.com/shopspring/decimal"

// Target calcula el objetivo de reposición: max(scorta minima, consumo medio mensual).
// safetyStock nil se trata como 0.
func Target(safetyStock *decimal.Decimal, avgMonthly decimal.Decimal) decimal.Decimal {
	if safetyStock == nil || safetyStock.LessThan(avgMonthly) {
		return avgMonthly
	}
	return *safetyStock
}

// Signal es la señal de bilancio respecto al target.
type Signal struct {
	Deficit  decimal.Decimal
	Surplus  decimal.Decimal
	Balanced bool
}

// BalanceSignal compara giacenza y target: deficit = target - onHand si falta,
// surplus = onHand - target si sobra, balanceado si son iguales.
func BalanceSignal(onHand, target decimal.Decimal) Signal {
	diff := onHand.Sub(target)
	switch {
	case diff.IsNegative():
		return Signal{Deficit: diff.Abs()}
	case diff.IsPositive():
		return Signal{Surplus: diff}
	default:
		return Signal{Balanced: true}
	}
}
