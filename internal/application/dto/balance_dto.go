package dto

import "github.com/shopspring/decimal"

// ListBalancesRequest query para GET /api/balances.
type ListBalancesRequest struct {
	Article string `query:"article"`
	Site    string `query:"site"`
	Area    string `query:"area"`
}

// BalanceRowResponse fila de la vista de giacenze. average_cost, avg_monthly y
// target son del artículo (globales); la señal compara la giacenza total del
// artículo con su target.
type BalanceRowResponse struct {
	Article     string           `json:"article"`
	Description string           `json:"description,omitempty"`
	UnitMeasure string           `json:"unit_measure,omitempty"`
	Site        string           `json:"site"`
	Area        string           `json:"area"`
	OnHand      decimal.Decimal  `json:"on_hand"`
	AverageCost *decimal.Decimal `json:"average_cost,omitempty"`
	AvgMonthly  decimal.Decimal  `json:"avg_monthly_consumption"`
	Target      decimal.Decimal  `json:"target"`
	Deficit     decimal.Decimal  `json:"deficit"`
	Surplus     decimal.Decimal  `json:"surplus"`
	Balanced    bool             `json:"balanced"`
}

// ArticleStatusResponse vista de planificación de un artículo.
type ArticleStatusResponse struct {
	Article     string                    `json:"article"`
	Description string                    `json:"description,omitempty"`
	UnitMeasure string                    `json:"unit_measure,omitempty"`
	OnHand      decimal.Decimal           `json:"on_hand"`
	AverageCost *decimal.Decimal          `json:"average_cost,omitempty"`
	AvgMonthly  decimal.Decimal           `json:"avg_monthly_consumption"`
	Target      decimal.Decimal           `json:"target"`
	Deficit     decimal.Decimal           `json:"deficit"`
	Surplus     decimal.Decimal           `json:"surplus"`
	Balanced    bool                      `json:"balanced"`
	ByLocation  []LocationBalanceResponse `json:"by_location"`
}

// LocationBalanceResponse giacenza de una ubicación.
type LocationBalanceResponse struct {
	Site   string          `json:"site"`
	Area   string          `json:"area"`
	OnHand decimal.Decimal `json:"on_hand"`
}
