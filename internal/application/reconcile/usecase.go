package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/application/ports"
	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

// UseCase reconcilia el stock físico con el ledger mediante sesiones de
// inventario: snapshot teórico al abrir, conteos mientras está abierta,
// movimientos correctivos al enviar. El ledger nunca se reescribe: las
// diferencias se absorben con movimientos nuevos.
type UseCase struct {
	txRunner      ports.TxRunner
	locationRepo  repository.LocationRepository
	inventoryRepo repository.InventoryRepository
	events        repository.EventPublisher
}

// NewUseCase construye el reconciler de inventario.
func NewUseCase(
	txRunner ports.TxRunner,
	locationRepo repository.LocationRepository,
	inventoryRepo repository.InventoryRepository,
	events repository.EventPublisher,
) *UseCase {
	return &UseCase{
		txRunner:      txRunner,
		locationRepo:  locationRepo,
		inventoryRepo: inventoryRepo,
		events:        events,
	}
}

// SessionView sesión más sus righe.
type SessionView struct {
	Session *entity.InventorySession
	Lines   []*entity.InventoryLine
}

// Open crea una sesión de inventario para una ubicación y fotografía en la
// misma transacción la giacenza teórica por (artículo, lote): sesión y righe
// nacen juntas y coherentes entre sí. Solo entran las righe con giacenza
// distinta de cero.
func (uc *UseCase) Open(ctx context.Context, site, area, note, createdBy string) (*SessionView, error) {
	location, err := uc.locationRepo.Get(ctx, site, area)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("%w: ubicación %s/%s", domain.ErrNotFound, site, area)
	}

	session := &entity.InventorySession{
		Site:      site,
		Area:      area,
		Note:      note,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	var lines []*entity.InventoryLine

	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		if err := repos.Inventories.CreateSession(ctx, session); err != nil {
			return err
		}
		balances, err := repos.Movements.LotBalancesAt(ctx, site, area)
		if err != nil {
			return err
		}
		lines = make([]*entity.InventoryLine, 0, len(balances))
		for _, b := range balances {
			line := &entity.InventoryLine{
				SessionID:   session.ID,
				Article:     b.Article,
				LotID:       b.LotID,
				UnitMeasure: b.UnitMeasure,
				Theoretical: b.OnHand,
			}
			if err := repos.Inventories.CreateLine(ctx, line); err != nil {
				return err
			}
			lines = append(lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: session, Lines: lines}, nil
}

// Get devuelve una sesión con sus righe.
func (uc *UseCase) Get(ctx context.Context, sessionID int64) (*SessionView, error) {
	session, err := uc.inventoryRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.inventoryRepo.ListLines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: session, Lines: lines}, nil
}

// ListSessions lista sesiones, opcionalmente solo las abiertas.
func (uc *UseCase) ListSessions(ctx context.Context, site, area string, onlyOpen bool) ([]*entity.InventorySession, error) {
	return uc.inventoryRepo.ListSessions(ctx, site, area, onlyOpen)
}

// RecordCount registra el conteo físico de una riga. Solo con la sesión
// abierta; un conteo de cero es un conteo válido (el artículo no está), que no
// es lo mismo que no contar.
func (uc *UseCase) RecordCount(ctx context.Context, sessionID, lineID int64, counted decimal.Decimal) error {
	if counted.IsNegative() {
		return fmt.Errorf("%w: il conteggio non può essere negativo", domain.ErrInvalidInput)
	}
	session, err := uc.inventoryRepo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: sessione %d", domain.ErrNotFound, sessionID)
	}
	if !session.Open() {
		return domain.ErrAlreadySubmitted
	}
	line, err := uc.inventoryRepo.GetLine(ctx, sessionID, lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return fmt.Errorf("%w: riga %d", domain.ErrNotFound, lineID)
	}
	return uc.inventoryRepo.UpdateCount(ctx, line.ID, counted)
}

// Corrective resumen de un movimiento correctivo emitido.
type Corrective struct {
	Article    string
	LotID      string
	Difference decimal.Decimal // counted - theoretical
}

// SubmitResult resultado del envío de una sesión.
type SubmitResult struct {
	SubmittedAt time.Time
	Correctives []Corrective
}

// Submit cierra la sesión y emite los movimientos correctivos, todo en una
// transacción. La guardia at-most-once es el UPDATE condicional de
// ClaimSubmission: dos envíos concurrentes de la misma sesión producen un solo
// ganador, el otro recibe ErrAlreadySubmitted y ningún correctivo duplicado.
// Reglas por riga: no contada → se salta; counted == theoretical → nada;
// counted > theoretical → LOAD por la diferencia; counted < theoretical →
// UNLOAD por la diferencia. Los correctivos no llevan precio: no son compras,
// y el costo medio no debe moverse por un recuento.
func (uc *UseCase) Submit(ctx context.Context, sessionID int64, submittedBy string) (*SubmitResult, error) {
	session, err := uc.inventoryRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: sessione %d", domain.ErrNotFound, sessionID)
	}
	if !session.Open() {
		return nil, domain.ErrAlreadySubmitted
	}

	now := time.Now()
	result := &SubmitResult{SubmittedAt: now}

	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		claimed, err := repos.Inventories.ClaimSubmission(ctx, sessionID, now)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrAlreadySubmitted
		}

		lines, err := repos.Inventories.ListLines(ctx, sessionID)
		if err != nil {
			return err
		}
		result.Correctives = result.Correctives[:0]
		for _, line := range lines {
			diff := line.Difference()
			if diff == nil || diff.IsZero() {
				continue
			}
			kind := entity.MovementLoad
			if diff.IsNegative() {
				kind = entity.MovementUnload
			}
			movement := &entity.Movement{
				Kind:          kind,
				Article:       line.Article,
				LotID:         line.LotID,
				Site:          session.Site,
				Area:          session.Area,
				Quantity:      *diff,
				EffectiveDate: now,
				EffectiveTime: now.Format("15:04:05"),
				Note:          fmt.Sprintf("Rettifica inventario %d", sessionID),
				CreatedBy:     submittedBy,
				CreatedAt:     now,
			}
			if err := repos.Movements.Create(ctx, movement); err != nil {
				return err
			}
			result.Correctives = append(result.Correctives, Corrective{
				Article:    line.Article,
				LotID:      line.LotID,
				Difference: *diff,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, domain.Event{
		Kind:      domain.EventInventorySubmitted,
		Reference: fmt.Sprintf("%d", sessionID),
		Message:   fmt.Sprintf("inventario %s/%s inviato: %d rettifiche", session.Site, session.Area, len(result.Correctives)),
	})
	return result, nil
}
