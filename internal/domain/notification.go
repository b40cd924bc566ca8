package domain

import "time"

// Severity es el nivel visual de una notificación.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Icon devuelve el prefijo que usa la consola.
func (s Severity) Icon() string {
	switch s {
	case SeveritySuccess:
		return "✔"
	case SeverityError:
		return "✖"
	case SeverityWarning:
		return "⚠"
	default:
		return "ℹ"
	}
}

// Notification es el mensaje efímero visible al usuario. Solo hay una viva.
type Notification struct {
	ID       uint64
	Message  string
	Severity Severity
	Visible  bool
	ShownAt  time.Time
}
