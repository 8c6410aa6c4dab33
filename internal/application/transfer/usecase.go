package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/application/ports"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

// UseCase coordina trasferimenti entre ubicaciones. Cada trasferimento emite
// exactamente dos movimientos (TRANSFER_OUT, TRANSFER_IN) en una transacción:
// nunca existe la mitad de un trasferimento y la giacenza total no cambia.
type UseCase struct {
	txRunner     ports.TxRunner
	articleRepo  repository.ArticleRepository
	locationRepo repository.LocationRepository
	transferRepo repository.TransferRepository
}

// NewUseCase construye el coordinador de trasferimenti. El lote se valida ya
// dentro de la transacción, sobre repos.Lots con lock de fila.
func NewUseCase(
	txRunner ports.TxRunner,
	articleRepo repository.ArticleRepository,
	locationRepo repository.LocationRepository,
	transferRepo repository.TransferRepository,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		articleRepo:  articleRepo,
		locationRepo: locationRepo,
		transferRepo: transferRepo,
	}
}

// CreateInput datos de un trasferimento. Quantity es la magnitud (> 0).
type CreateInput struct {
	Article       string
	LotID         string
	FromSite      string
	FromArea      string
	ToSite        string
	ToArea        string
	Quantity      decimal.Decimal
	EffectiveDate *time.Time
	Note          string
	CreatedBy     string
}

// Create valida y ejecuta un trasferimento. A diferencia del prelievo, aquí se
// exige giacenza suficiente del lote en origen: mover stock que no está ahí no
// es una divergencia de piazzale, es un error del operatore.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.Transfer, error) {
	if !input.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if input.FromSite == input.ToSite && input.FromArea == input.ToArea {
		return nil, fmt.Errorf("%w: origen y destino coinciden", domain.ErrInvalidInput)
	}

	article, err := uc.articleRepo.GetByCode(ctx, input.Article)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, input.Article)
	}
	for _, loc := range [][2]string{{input.FromSite, input.FromArea}, {input.ToSite, input.ToArea}} {
		location, err := uc.locationRepo.Get(ctx, loc[0], loc[1])
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, fmt.Errorf("%w: ubicación %s/%s", domain.ErrNotFound, loc[0], loc[1])
		}
	}
	now := time.Now()
	date := now
	if input.EffectiveDate != nil {
		date = *input.EffectiveDate
	}
	transfer := &entity.Transfer{
		ID:            uuid.New().String(),
		Article:       input.Article,
		LotID:         input.LotID,
		FromSite:      input.FromSite,
		FromArea:      input.FromArea,
		ToSite:        input.ToSite,
		ToArea:        input.ToArea,
		Quantity:      input.Quantity,
		EffectiveDate: date,
		EffectiveTime: now.Format("15:04:05"),
		Note:          input.Note,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		// El lock de fila del lote serializa los trasferimenti concurrentes del
		// mismo lote: el saldo se recalcula ya dentro de la tx, después del lock.
		lot, err := repos.Lots.GetForUpdate(ctx, input.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, input.LotID)
		}
		if lot.Article != input.Article {
			return fmt.Errorf("%w: el lote %s pertenece a otro artículo", domain.ErrInvalidInput, input.LotID)
		}
		onHand, err := repos.Movements.LotBalanceOf(ctx, input.Article, input.LotID, input.FromSite, input.FromArea)
		if err != nil {
			return err
		}
		if onHand.LessThan(input.Quantity) {
			return fmt.Errorf("%w: giacenza %s, richiesta %s", domain.ErrInsufficientStock, onHand, input.Quantity)
		}

		if err := repos.Transfers.Create(ctx, transfer); err != nil {
			return err
		}
		out := transferHalf(transfer, entity.MovementTransferOut, transfer.Quantity.Neg())
		in := transferHalf(transfer, entity.MovementTransferIn, transfer.Quantity)
		in.Site, in.Area = transfer.ToSite, transfer.ToArea
		if err := repos.Movements.Create(ctx, out); err != nil {
			return err
		}
		return repos.Movements.Create(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

// Get devuelve un trasferimento por id.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Transfer, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}
	return transfer, nil
}

// List devuelve trasferimenti con filtros.
func (uc *UseCase) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	return uc.transferRepo.List(ctx, filter)
}

// transferHalf construye una mitad del par de movimientos, en origen por defecto.
func transferHalf(t *entity.Transfer, kind string, qty decimal.Decimal) *entity.Movement {
	transferID := t.ID
	return &entity.Movement{
		Kind:          kind,
		Article:       t.Article,
		LotID:         t.LotID,
		Site:          t.FromSite,
		Area:          t.FromArea,
		Quantity:      qty,
		EffectiveDate: t.EffectiveDate,
		EffectiveTime: t.EffectiveTime,
		Note:          t.Note,
		TransferID:    &transferID,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
	}
}
