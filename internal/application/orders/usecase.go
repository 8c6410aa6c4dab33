package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/application/lots"
	"github.com/alcafoods/magazzino-api/internal/application/ports"
	appstock "github.com/alcafoods/magazzino-api/internal/application/stock"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

// UseCase gestiona ordini a fornitore: creación con snapshot de precio,
// residuo de evasione por riga y evasione de ricevimenti.
type UseCase struct {
	txRunner     ports.TxRunner
	articleRepo  repository.ArticleRepository
	locationRepo repository.LocationRepository
	orderRepo    repository.OrderRepository
	movementRepo repository.MovementRepository
	stock        *appstock.UseCase
	events       repository.EventPublisher
}

// NewUseCase construye el caso de uso de ordini.
func NewUseCase(
	txRunner ports.TxRunner,
	articleRepo repository.ArticleRepository,
	locationRepo repository.LocationRepository,
	orderRepo repository.OrderRepository,
	movementRepo repository.MovementRepository,
	stockUC *appstock.UseCase,
	events repository.EventPublisher,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		articleRepo:  articleRepo,
		locationRepo: locationRepo,
		orderRepo:    orderRepo,
		movementRepo: movementRepo,
		stock:        stockUC,
		events:       events,
	}
}

// LineInput una riga del ordine a crear.
type LineInput struct {
	Article         string
	OrderedQty      decimal.Decimal
	ExpectedArrival *time.Time
	LastPrice       *decimal.Decimal
}

// CreateInput testata y righe de un ordine.
type CreateInput struct {
	OrderDate *time.Time
	Number    string
	Supplier  string
	Notes     string
	Lines     []LineInput
	CreatedBy string
}

// CreatedOrder resultado de la creación: testata más righe con ids asignados.
type CreatedOrder struct {
	Order *entity.Order
	Lines []*entity.OrderLine
}

// Create persiste testata y righe en una transacción. Cada riga congela el
// costo medio del artículo en ese momento (snapshot): los carichi posteriores
// no lo tocan nunca. El snapshot se calcula ANTES de abrir la tx, las lecturas
// de valoración no se mezclan con la escritura.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*CreatedOrder, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: un ordine richiede almeno una riga", domain.ErrInvalidInput)
	}

	type preparedLine struct {
		article  *entity.Article
		input    LineInput
		snapshot *decimal.Decimal
	}
	prepared := make([]preparedLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if !line.OrderedQty.IsPositive() {
			return nil, fmt.Errorf("%w: la cantidad ordenada debe ser positiva", domain.ErrInvalidInput)
		}
		article, err := uc.articleRepo.GetByCode(ctx, line.Article)
		if err != nil {
			return nil, err
		}
		if article == nil {
			return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, line.Article)
		}
		snapshot, err := uc.stock.AverageCost(ctx, line.Article)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, preparedLine{article: article, input: line, snapshot: snapshot})
	}

	now := time.Now()
	orderDate := now
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}
	order := &entity.Order{
		OrderDate: orderDate,
		Number:    input.Number,
		Supplier:  input.Supplier,
		Notes:     input.Notes,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
	}
	var createdLines []*entity.OrderLine

	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		if err := repos.Orders.CreateHeader(ctx, order); err != nil {
			return err
		}
		createdLines = make([]*entity.OrderLine, 0, len(prepared))
		for _, p := range prepared {
			line := &entity.OrderLine{
				OrderID:         order.ID,
				Article:         p.article.Code,
				Description:     p.article.Description,
				UnitMeasure:     p.article.UnitMeasure,
				OrderedQty:      p.input.OrderedQty,
				ExpectedArrival: p.input.ExpectedArrival,
				LastPrice:       p.input.LastPrice,
				PriceSnapshot:   p.snapshot,
			}
			if err := repos.Orders.CreateLine(ctx, line); err != nil {
				return err
			}
			createdLines = append(createdLines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreatedOrder{Order: order, Lines: createdLines}, nil
}

// Get devuelve un ordine con sus righe.
func (uc *UseCase) Get(ctx context.Context, orderID int64) (*CreatedOrder, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.orderRepo.ListLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &CreatedOrder{Order: order, Lines: lines}, nil
}

// Residuals calcula el residuo de evasione de cada riga del ordine: cantidad
// ordenada menos carichi enlazados. El estado de evasione es siempre derivado,
// nunca almacenado: no puede desincronizarse del ledger.
func (uc *UseCase) Residuals(ctx context.Context, orderID int64) ([]entity.LineResidual, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.orderRepo.ListLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lineIDs := make([]int64, len(lines))
	for i, l := range lines {
		lineIDs[i] = l.ID
	}
	received, err := uc.movementRepo.ReceivedByOrderLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}

	residuals := make([]entity.LineResidual, 0, len(lines))
	for _, l := range lines {
		got := received[l.ID] // Zero si la riga no tiene carichi
		residuals = append(residuals, entity.LineResidual{
			LineID:     l.ID,
			Article:    l.Article,
			OrderedQty: l.OrderedQty,
			Received:   got,
			Residual:   l.OrderedQty.Sub(got),
		})
	}
	return residuals, nil
}

// ReceiptLine una riga de ricevimento: cantidad llegada de una riga d'ordine,
// con los datos del lote físico. UnitPrice nil = prezzo da definire.
type ReceiptLine struct {
	OrderLineID int64
	Quantity    decimal.Decimal
	SupplierLot string
	Expiry      time.Time
	UnitPrice   *decimal.Decimal
}

// ReceiptInput evasione de un ricevimento contra un ordine.
type ReceiptInput struct {
	OrderID   int64
	Site      string
	Area      string
	Lines     []ReceiptLine
	CreatedBy string
}

// ReceiptResult resumen de la evasione.
type ReceiptResult struct {
	MovementsCreated int
	LotsCreated      int
}

// FulfillReceipt registra la llegada de mercancía contra un ordine: por cada
// riga recibida resuelve o crea el lote y emite un carico enlazado a la riga
// d'ordine, todo en una transacción. Las righe con cantidad cero se saltan.
// Una riga sin precio se carga igualmente (el camión no espera al ufficio) y
// levanta el evento de prezzo da definire.
func (uc *UseCase) FulfillReceipt(ctx context.Context, input ReceiptInput) (*ReceiptResult, error) {
	order, err := uc.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: ordine %d", domain.ErrNotFound, input.OrderID)
	}
	location, err := uc.locationRepo.Get(ctx, input.Site, input.Area)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %s/%s", domain.ErrNotFound, input.Site, input.Area)
	}

	type arrival struct {
		line  *entity.OrderLine
		input ReceiptLine
	}
	arrivals := make([]arrival, 0, len(input.Lines))
	for _, rl := range input.Lines {
		if rl.Quantity.IsZero() {
			continue
		}
		if rl.Quantity.IsNegative() {
			return nil, fmt.Errorf("%w: cantidad recibida negativa", domain.ErrInvalidInput)
		}
		if rl.SupplierLot == "" || rl.Expiry.IsZero() {
			return nil, fmt.Errorf("%w: lotto fornitore y scadenza obligatorios", domain.ErrInvalidInput)
		}
		if rl.UnitPrice != nil && !rl.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: precio unitario no positivo", domain.ErrInvalidInput)
		}
		line, err := uc.orderRepo.GetLine(ctx, rl.OrderLineID)
		if err != nil {
			return nil, err
		}
		if line == nil || line.OrderID != input.OrderID {
			return nil, fmt.Errorf("%w: riga %d dell'ordine %d", domain.ErrNotFound, rl.OrderLineID, input.OrderID)
		}
		arrivals = append(arrivals, arrival{line: line, input: rl})
	}
	if len(arrivals) == 0 {
		return nil, fmt.Errorf("%w: nessuna riga con quantità", domain.ErrInvalidInput)
	}

	now := time.Now()
	result := &ReceiptResult{}
	var pending []domain.Event // eventos de prezzo da definire, publicados solo si la tx confirma

	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		result.MovementsCreated, result.LotsCreated = 0, 0
		pending = pending[:0]
		for _, a := range arrivals {
			lot, createdNew, err := lots.FindOrCreate(ctx, repos.Lots, a.line.Article, a.input.SupplierLot, a.input.Expiry)
			if err != nil {
				return err
			}
			if createdNew {
				result.LotsCreated++
			}
			lineID := a.line.ID
			movement := &entity.Movement{
				Kind:          entity.MovementLoad,
				Article:       a.line.Article,
				LotID:         lot.ID,
				Site:          input.Site,
				Area:          input.Area,
				Quantity:      a.input.Quantity,
				UnitPrice:     a.input.UnitPrice,
				EffectiveDate: now,
				EffectiveTime: now.Format("15:04:05"),
				Note:          fmt.Sprintf("Ricevimento ordine %s", order.Number),
				OrderLineID:   &lineID,
				CreatedBy:     input.CreatedBy,
				CreatedAt:     now,
			}
			if err := repos.Movements.Create(ctx, movement); err != nil {
				return err
			}
			result.MovementsCreated++
			if a.input.UnitPrice == nil {
				pending = append(pending, domain.Event{
					Kind:      domain.EventPriceToDefine,
					Article:   a.line.Article,
					Reference: fmt.Sprintf("%d", lineID),
					Message:   fmt.Sprintf("carico senza prezzo per l'articolo %s (ordine %s)", a.line.Article, order.Number),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range pending {
		uc.events.Publish(ctx, ev)
	}
	uc.events.Publish(ctx, domain.Event{
		Kind:      domain.EventReceiptFulfilled,
		Reference: fmt.Sprintf("%d", input.OrderID),
		Message:   fmt.Sprintf("ricevimento evaso: %d carichi, %d lotti nuovi", result.MovementsCreated, result.LotsCreated),
	})
	return result, nil
}
