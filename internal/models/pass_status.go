package models

import "time"

// Recognized status values for the monitored pass. StatusUnknown means the
// source page was fetched but carried no recognizable keyword; StatusError
// means the page could not be fetched at all.
const (
	StatusOpen    = "Abierto"
	StatusClosed  = "Cerrado"
	StatusEnabled = "Habilitado"
	StatusUnknown = "Estado desconocido"
	StatusError   = "Error"
)

// PassStatus is the single authoritative record describing the monitored
// mountain pass. At most one row exists; the sync job creates it lazily.
type PassStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}
