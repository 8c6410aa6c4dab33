package repository

import (
	"context"

	"github.com/alcafoods/magazzino-api/internal/domain"
)

// EventPublisher es el puerto hacia el dispatcher de notificaciones externo.
// El core levanta el evento y sigue; la entrega (push, in-app) no le pertenece
// y un fallo del publisher nunca aborta la operación.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
