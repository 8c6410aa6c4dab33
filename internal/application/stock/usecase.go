package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/application/ports"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
	domstock "github.com/alcafoods/magazzino-api/internal/domain/stock"
)

// UseCase expone las proyecciones de lectura del ledger: giacenze, costo medio,
// consumo medio mensual, target y señal de bilancio. Todo derivado, nada almacenado.
type UseCase struct {
	articleRepo  repository.ArticleRepository
	movementRepo repository.MovementRepository
	cache        ports.ValuationCache // nil = sin cache
	now          func() time.Time
}

// NewUseCase construye las proyecciones de stock. cache puede ser nil.
func NewUseCase(articleRepo repository.ArticleRepository, movementRepo repository.MovementRepository, cache ports.ValuationCache) *UseCase {
	return &UseCase{
		articleRepo:  articleRepo,
		movementRepo: movementRepo,
		cache:        cache,
		now:          time.Now,
	}
}

// AverageCost devuelve el costo medio ponderado global del artículo, nil si el
// artículo no tiene carichi con precio. El cache se versiona con el id del
// último movimiento: cualquier escritura del ledger invalida la entrada sin
// necesidad de purgas explícitas.
func (uc *UseCase) AverageCost(ctx context.Context, article string) (*decimal.Decimal, error) {
	var version string
	if uc.cache != nil {
		var err error
		version, err = uc.movementRepo.LatestMovementID(ctx, article)
		if err != nil {
			return nil, err
		}
		if price, ok := uc.cache.Get(ctx, article, version); ok {
			return price, nil
		}
	}

	loads, err := uc.movementRepo.PricedLoads(ctx, article)
	if err != nil {
		return nil, err
	}
	price := domstock.WeightedAverageCost(loads)

	if uc.cache != nil {
		uc.cache.Set(ctx, article, version, price)
	}
	return price, nil
}

// Consumption devuelve el consumo medio mensual del artículo (ventana de 365 días).
func (uc *UseCase) Consumption(ctx context.Context, article string) (decimal.Decimal, error) {
	now := uc.now()
	unloads, err := uc.movementRepo.UnloadsSince(ctx, article, now.AddDate(0, 0, -365))
	if err != nil {
		return decimal.Zero, err
	}
	return domstock.AverageMonthlyConsumption(unloads, now), nil
}

// ArticleStatus es la vista de planificación de un artículo: totales globales
// más el desglose por ubicación.
type ArticleStatus struct {
	Article     string
	Description string
	UnitMeasure string
	OnHand      decimal.Decimal // giacenza total, todas las ubicaciones
	AverageCost *decimal.Decimal
	AvgMonthly  decimal.Decimal
	Target      decimal.Decimal
	Signal      domstock.Signal
	ByLocation  []repository.LocationBalance
}

// Status calcula la vista de planificación de un artículo.
func (uc *UseCase) Status(ctx context.Context, articleCode string) (*ArticleStatus, error) {
	article, err := uc.articleRepo.GetByCode(ctx, articleCode)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, articleCode)
	}

	byLocation, err := uc.movementRepo.BalancesFor(ctx, articleCode)
	if err != nil {
		return nil, err
	}
	onHand := decimal.Zero
	for _, b := range byLocation {
		onHand = onHand.Add(b.OnHand)
	}

	avgCost, err := uc.AverageCost(ctx, articleCode)
	if err != nil {
		return nil, err
	}
	avgMonthly, err := uc.Consumption(ctx, articleCode)
	if err != nil {
		return nil, err
	}
	target := domstock.Target(article.SafetyStock, avgMonthly)

	return &ArticleStatus{
		Article:     article.Code,
		Description: article.Description,
		UnitMeasure: article.UnitMeasure,
		OnHand:      onHand,
		AverageCost: avgCost,
		AvgMonthly:  avgMonthly,
		Target:      target,
		Signal:      domstock.BalanceSignal(onHand, target),
		ByLocation:  byLocation,
	}, nil
}

// BalanceRow es una fila de la vista de giacenze: (artículo, ubicación) con la
// valoración y la señal del artículo. AverageCost y Target son globales por
// artículo; Signal compara la giacenza TOTAL del artículo con su target, no la
// de la fila (el surplus en una sede no es deficit en otra).
type BalanceRow struct {
	Article     string
	Description string
	UnitMeasure string
	Site        string
	Area        string
	OnHand      decimal.Decimal
	AverageCost *decimal.Decimal
	AvgMonthly  decimal.Decimal
	Target      decimal.Decimal
	Signal      domstock.Signal
}

// Balances devuelve la vista de giacenze por (artículo, ubicación), enriquecida
// con costo medio, consumo, target y señal. Filtros opcionales.
func (uc *UseCase) Balances(ctx context.Context, article, site, area string) ([]BalanceRow, error) {
	balances, err := uc.movementRepo.Balances(ctx, article, site, area)
	if err != nil {
		return nil, err
	}

	// Una valoración por artículo, no por fila
	type articleView struct {
		description string
		unitMeasure string
		avgCost     *decimal.Decimal
		avgMonthly  decimal.Decimal
		target      decimal.Decimal
		signal      domstock.Signal
	}
	views := make(map[string]articleView)

	rows := make([]BalanceRow, 0, len(balances))
	for _, b := range balances {
		view, ok := views[b.Article]
		if !ok {
			status, err := uc.Status(ctx, b.Article)
			if err != nil {
				return nil, err
			}
			view = articleView{
				description: status.Description,
				unitMeasure: status.UnitMeasure,
				avgCost:     status.AverageCost,
				avgMonthly:  status.AvgMonthly,
				target:      status.Target,
				signal:      status.Signal,
			}
			views[b.Article] = view
		}
		rows = append(rows, BalanceRow{
			Article:     b.Article,
			Description: view.description,
			UnitMeasure: view.unitMeasure,
			Site:        b.Site,
			Area:        b.Area,
			OnHand:      b.OnHand,
			AverageCost: view.avgCost,
			AvgMonthly:  view.avgMonthly,
			Target:      view.target,
			Signal:      view.signal,
		})
	}
	return rows, nil
}
