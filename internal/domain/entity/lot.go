package entity

import "time"

// Lot representa la unidad de trazabilidad: un batch de fornitore con scadenza.
// ID es el BATCH_ID emitido (prefijo + secuencia, ej. ALCA000123); es lo que
// codifica la etiqueta QR física. La tripla (Article, SupplierLot, Expiry) es única.
// Un lote con movimientos asociados nunca se elimina.
type Lot struct {
	ID          string // BATCH_ID emitido, único y estrictamente creciente
	InternalSeq int64  // lotto_interno: secuencia monótona interna
	Article     string
	SupplierLot string // etiqueta de lote del fornitore
	Expiry      time.Time
	CreatedAt   time.Time
}
