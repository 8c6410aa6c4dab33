package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Todos son recuperables por el caller corrigiendo la entrada; los fallos de
// infraestructura (DB caída, etc.) se propagan envueltos, nunca como estos sentinelas.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicateLot      = errors.New("lote duplicado: ya existe (artículo, lote fornitore, scadenza)")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrAlreadySubmitted  = errors.New("inventario ya enviado")
	ErrInsufficientStock = errors.New("giacenza insuficiente")
)
