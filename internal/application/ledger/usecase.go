package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/application/lots"
	"github.com/alcafoods/magazzino-api/internal/application/ports"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

// UseCase registra movimientos manuales en el ledger y los lista.
// Los TRANSFER_* no se registran aquí: su único writer es el coordinador de
// trasferimenti, que garantiza la pareja atómica.
type UseCase struct {
	txRunner     ports.TxRunner
	articleRepo  repository.ArticleRepository
	locationRepo repository.LocationRepository
	lotRepo      repository.LotRepository
	movementRepo repository.MovementRepository
	events       repository.EventPublisher
}

// NewUseCase construye el caso de uso del ledger.
func NewUseCase(
	txRunner ports.TxRunner,
	articleRepo repository.ArticleRepository,
	locationRepo repository.LocationRepository,
	lotRepo repository.LotRepository,
	movementRepo repository.MovementRepository,
	events repository.EventPublisher,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		articleRepo:  articleRepo,
		locationRepo: locationRepo,
		lotRepo:      lotRepo,
		movementRepo: movementRepo,
		events:       events,
	}
}

// NewLotSpec describe un lote a crear junto con su primer carico.
type NewLotSpec struct {
	SupplierLot string
	Expiry      time.Time
}

// RecordInput datos de un movimiento manual. Quantity es la magnitud (> 0);
// el signo lo asigna el caso de uso según el tipo. Exactamente uno entre LotID
// y NewLot debe estar presente; NewLot solo es válido en LOAD.
type RecordInput struct {
	Kind          string
	Article       string
	LotID         string
	NewLot        *NewLotSpec
	Site          string
	Area          string
	Quantity      decimal.Decimal
	UnitPrice     *decimal.Decimal
	EffectiveDate *time.Time
	EffectiveTime string
	Note          string
	CreatedBy     string
}

// Record valida y persiste un movimiento manual (LOAD o UNLOAD). Si el input
// trae NewLot, el lote y su primer carico nacen en la misma transacción: nunca
// queda un lote huérfano ni un carico sin lote. Un UNLOAD que supera la
// giacenza se acepta igualmente y levanta el evento de divergencia.
func (uc *UseCase) Record(ctx context.Context, input RecordInput) (*entity.Movement, error) {
	if input.Kind != entity.MovementLoad && input.Kind != entity.MovementUnload {
		return nil, fmt.Errorf("%w: tipo de movimiento no registrable manualmente", domain.ErrInvalidInput)
	}
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if input.Kind == entity.MovementLoad {
		if input.UnitPrice == nil || !input.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: el carico requiere precio unitario positivo", domain.ErrInvalidInput)
		}
	} else if input.UnitPrice != nil {
		return nil, fmt.Errorf("%w: solo el carico lleva precio unitario", domain.ErrInvalidInput)
	}
	if (input.LotID == "") == (input.NewLot == nil) {
		return nil, fmt.Errorf("%w: indicar lote existente o lote nuevo, no ambos", domain.ErrInvalidInput)
	}
	if input.NewLot != nil && input.Kind != entity.MovementLoad {
		return nil, fmt.Errorf("%w: el lote nuevo solo nace con un carico", domain.ErrInvalidInput)
	}

	article, err := uc.articleRepo.GetByCode(ctx, input.Article)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, input.Article)
	}
	location, err := uc.locationRepo.Get(ctx, input.Site, input.Area)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %s/%s", domain.ErrNotFound, input.Site, input.Area)
	}
	if input.LotID != "" {
		lot, err := uc.lotRepo.GetByID(ctx, input.LotID)
		if err != nil {
			return nil, err
		}
		if lot == nil {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, input.LotID)
		}
		if lot.Article != input.Article {
			return nil, fmt.Errorf("%w: el lote %s pertenece a otro artículo", domain.ErrInvalidInput, input.LotID)
		}
	}

	// Divergencia detectada antes de escribir; el evento se publica solo si la tx confirma
	var exceeds bool
	if input.Kind == entity.MovementUnload {
		onHand, err := uc.movementRepo.BalanceOf(ctx, input.Article, input.Site, input.Area)
		if err != nil {
			return nil, err
		}
		exceeds = input.Quantity.GreaterThan(onHand)
	}

	movement := buildMovement(input)
	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		if input.NewLot != nil {
			lot, _, err := lots.FindOrCreate(ctx, repos.Lots, input.Article, input.NewLot.SupplierLot, input.NewLot.Expiry)
			if err != nil {
				return err
			}
			movement.LotID = lot.ID
		}
		return repos.Movements.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	if exceeds {
		uc.events.Publish(ctx, domain.Event{
			Kind:      domain.EventWithdrawalExceedsOnHand,
			Article:   input.Article,
			Reference: movement.ID,
			Message:   fmt.Sprintf("scarico di %s supera la giacenza in %s/%s", input.Quantity, input.Site, input.Area),
		})
	}
	return movement, nil
}

// WithdrawInput datos de un prelievo por etiqueta: el BATCH_ID identifica el
// lote y de él se deriva el artículo.
type WithdrawInput struct {
	LotID     string
	Site      string
	Area      string
	Quantity  decimal.Decimal
	Note      string
	CreatedBy string
}

// Withdraw registra el prelievo de un lote escaneado. La giacenza puede quedar
// negativa: el flujo de piazzale no se bloquea, la divergencia se señala con un
// evento y la reconciliación la corrige después.
func (uc *UseCase) Withdraw(ctx context.Context, input WithdrawInput) (*entity.Movement, error) {
	lot, err := uc.lotRepo.GetByID(ctx, input.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, input.LotID)
	}
	return uc.Record(ctx, RecordInput{
		Kind:      entity.MovementUnload,
		Article:   lot.Article,
		LotID:     lot.ID,
		Site:      input.Site,
		Area:      input.Area,
		Quantity:  input.Quantity,
		Note:      input.Note,
		CreatedBy: input.CreatedBy,
	})
}

// List devuelve movimientos del ledger con filtros.
func (uc *UseCase) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	if filter.Kind != "" && !entity.ValidKind(filter.Kind) {
		return nil, fmt.Errorf("%w: tipo de movimiento desconocido", domain.ErrInvalidInput)
	}
	return uc.movementRepo.List(ctx, filter)
}

// buildMovement normaliza el input: signo según el tipo, precio solo en LOAD,
// fecha y hora efectivas con default "ahora".
func buildMovement(input RecordInput) *entity.Movement {
	now := time.Now()
	qty := input.Quantity
	if !entity.InboundKind(input.Kind) {
		qty = qty.Neg()
	}
	var price *decimal.Decimal
	if input.Kind == entity.MovementLoad {
		price = input.UnitPrice
	}
	date := now
	if input.EffectiveDate != nil {
		date = *input.EffectiveDate
	}
	timeOfDay := input.EffectiveTime
	if timeOfDay == "" {
		timeOfDay = now.Format("15:04:05")
	}
	return &entity.Movement{
		Kind:          input.Kind,
		Article:       input.Article,
		LotID:         input.LotID,
		Site:          input.Site,
		Area:          input.Area,
		Quantity:      qty,
		UnitPrice:     price,
		EffectiveDate: date,
		EffectiveTime: timeOfDay,
		Note:          input.Note,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
	}
}
