package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger.
const (
	MovementLoad        = "LOAD"         // carico: entrada, cantidad positiva, lleva precio
	MovementUnload      = "UNLOAD"       // scarico: salida, cantidad negativa
	MovementTransferOut = "TRANSFER_OUT" // mitad de salida de un trasferimento
	MovementTransferIn  = "TRANSFER_IN"  // mitad de entrada de un trasferimento
)

// InboundKind indica si el tipo de movimiento aumenta la giacenza.
func InboundKind(kind string) bool {
	return kind == MovementLoad || kind == MovementTransferIn
}

// ValidKind indica si kind es uno de los cuatro tipos del ledger.
func ValidKind(kind string) bool {
	switch kind {
	case MovementLoad, MovementUnload, MovementTransferOut, MovementTransferIn:
		return true
	}
	return false
}

// Movement es el hecho atómico e inmutable del ledger: append-only, sin update
// ni delete. Las correcciones son siempre movimientos nuevos. Quantity lleva el
// signo (positiva en entradas, negativa en salidas); UnitPrice solo en LOAD.
type Movement struct {
	ID            string
	Kind          string
	Article       string
	LotID         string
	Site          string
	Area          string
	Quantity      decimal.Decimal
	UnitPrice     *decimal.Decimal // obligatorio en LOAD manual/ricevimento, nil en el resto
	EffectiveDate time.Time        // data_effettiva (solo fecha)
	EffectiveTime string           // ora_effettiva, formato HH:MM:SS
	Note          string
	OrderLineID   *int64  // back-reference a la riga d'ordine (carichi de ricevimento)
	TransferID    *string // back-reference al trasferimento (pares TRANSFER_*)
	CreatedBy     string
	CreatedAt     time.Time
}
