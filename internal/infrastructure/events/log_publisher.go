package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

var _ repository.EventPublisher = (*LogPublisher)(nil)

// LogPublisher emite los eventos de dominio al log estructurado. Es el
// adaptador por defecto: el dispatcher de notificaciones real (push, in-app)
// vive fuera de este servicio y consume los mismos eventos.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publisher sobre el logger de la app.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish registra el evento. Nunca falla ni bloquea la operación que lo levanta.
func (p *LogPublisher) Publish(_ context.Context, event domain.Event) {
	p.log.Info().
		Str("event", event.Kind).
		Str("article", event.Article).
		Str("reference", event.Reference).
		Msg(event.Message)
}
