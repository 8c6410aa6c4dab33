package entity

import "time"

// Location representa la unidad física direccionable de almacenamiento: el par (sede, sezione).
// Único por el par.
type Location struct {
	Site      string // sede
	Area      string // sezione
	CreatedAt time.Time
}
