package domain

// Eventos de dominio que el core levanta para los collaborators externos
// (notificaciones, etc.). El core solo los emite; la entrega no es su responsabilidad.
const (
	EventWithdrawalExceedsOnHand = "PRELIEVO_SUPERA_GIACENZA"
	EventPriceToDefine           = "RIGA_CARICATA_PREZZO_DA_DEFINIRE"
	EventInventorySubmitted      = "INVENTARIO_INVIATO"
	EventReceiptFulfilled        = "EVASIONE_RICEVIMENTO"
)

// Event es el payload mínimo que consume el dispatcher externo.
type Event struct {
	Kind      string
	Article   string
	Reference string // id del recurso relacionado (riga d'ordine, sesión, etc.)
	Message   string
}
