package backend

import "fmt"

// Error es el único tipo de error que devuelve el cliente remoto: transporte,
// status no-2xx, error en el body o JSON inválido.
type Error struct {
	Op         string
	Method     string
	Path       string
	StatusCode int // 0 si no hubo respuesta
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend.%s: %s %s: status %d: %v", e.Op, e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("backend.%s: %s %s: %v", e.Op, e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
