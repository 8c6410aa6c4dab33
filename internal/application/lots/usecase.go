package lots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
	"github.com/alcafoods/magazzino-api/internal/application/ports"
)

// BatchPrefix prefijo fijo de los BATCH_ID emitidos.
const BatchPrefix = "ALCA"

// FormatBatchID formatea un número de secuencia como BATCH_ID (ej. ALCA000123).
// El padding fijo conserva el orden lexicográfico = orden de emisión.
func FormatBatchID(seq int64) string {
	return fmt.Sprintf("%s%06d", BatchPrefix, seq)
}

// UseCase emite y resuelve identidades de lote (BATCH_ID) y crea lotes.
// La emisión usa la secuencia de BD: concurrencia segura, sin read-then-increment.
type UseCase struct {
	txRunner    ports.TxRunner
	lotRepo     repository.LotRepository
	articleRepo repository.ArticleRepository
}

// NewUseCase construye el caso de uso de lotes.
func NewUseCase(txRunner ports.TxRunner, lotRepo repository.LotRepository, articleRepo repository.ArticleRepository) *UseCase {
	return &UseCase{txRunner: txRunner, lotRepo: lotRepo, articleRepo: articleRepo}
}

// Issue emite un BATCH_ID nuevo, único y estrictamente mayor que todos los
// anteriores. Los huecos (secuencia consumida por una tx abortada) son aceptables.
func (uc *UseCase) Issue(ctx context.Context) (string, error) {
	seq, err := uc.lotRepo.NextSeq(ctx)
	if err != nil {
		return "", err
	}
	return FormatBatchID(seq), nil
}

// CreateInput datos para crear un lote.
type CreateInput struct {
	Article     string
	SupplierLot string
	Expiry      time.Time
}

// Create crea un lote con identidad recién emitida. La tripla duplicada
// (artículo, lote fornitore, scadenza) devuelve domain.ErrDuplicateLot,
// distinguible del resto de errores de validación.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.Lot, error) {
	if input.Article == "" || input.SupplierLot == "" || input.Expiry.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	article, err := uc.articleRepo.GetByCode(ctx, input.Article)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}

	var created *entity.Lot
	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		lot, err := create(ctx, repos.Lots, input.Article, input.SupplierLot, input.Expiry)
		if err != nil {
			return err
		}
		created = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// create emite la identidad e inserta el lote usando el repo recibido
// (dentro de la tx del caller).
func create(ctx context.Context, lotRepo repository.LotRepository, article, supplierLot string, expiry time.Time) (*entity.Lot, error) {
	seq, err := lotRepo.NextSeq(ctx)
	if err != nil {
		return nil, err
	}
	lot := &entity.Lot{
		ID:          FormatBatchID(seq),
		InternalSeq: seq,
		Article:     article,
		SupplierLot: supplierLot,
		Expiry:      expiry,
		CreatedAt:   time.Now(),
	}
	if err := lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// FindOrCreate busca el lote por tripla y lo crea si no existe. Si otro writer
// concurrente crea la misma tripla entre el find y el insert, se relee y se
// devuelve el lote ganador (retry-on-conflict, una vez basta: la tripla ya existe).
// Pensado para usarse dentro de la tx del ricevimento, sobre repos.Lots.
func FindOrCreate(ctx context.Context, lotRepo repository.LotRepository, article, supplierLot string, expiry time.Time) (lot *entity.Lot, createdNew bool, err error) {
	existing, err := lotRepo.FindByTriple(ctx, article, supplierLot, expiry)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	lot, err = create(ctx, lotRepo, article, supplierLot, expiry)
	if err == nil {
		return lot, true, nil
	}
	if !errors.Is(err, domain.ErrDuplicateLot) {
		return nil, false, err
	}
	existing, ferr := lotRepo.FindByTriple(ctx, article, supplierLot, expiry)
	if ferr != nil {
		return nil, false, ferr
	}
	if existing == nil {
		// El ganador concurrente desapareció (rollback ajeno): propagar el conflicto original
		return nil, false, err
	}
	return existing, false, nil
}

// ResolvedLot es el payload de trazabilidad que codifica la etiqueta QR:
// el lote más los datos del artículo. El render de la etiqueta es externo.
type ResolvedLot struct {
	Lot     *entity.Lot
	Article *entity.Article
}

// Resolve decodifica un BATCH_ID.
func (uc *UseCase) Resolve(ctx context.Context, id string) (*ResolvedLot, error) {
	lot, err := uc.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	article, err := uc.articleRepo.GetByCode(ctx, lot.Article)
	if err != nil {
		return nil, err
	}
	return &ResolvedLot{Lot: lot, Article: article}, nil
}

// ListByArticle lista los lotes de un artículo.
func (uc *UseCase) ListByArticle(ctx context.Context, article string) ([]*entity.Lot, error) {
	a, err := uc.articleRepo.GetByCode(ctx, article)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return uc.lotRepo.ListByArticle(ctx, article)
}
