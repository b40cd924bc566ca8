package domain

// AuthState es el estado del gate de autenticación.
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticating
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session es la conexión autenticada con el backend. Vive solo en memoria.
type Session struct {
	Token     string
	UserID    string
	Connected bool
}

// AuthResult es la respuesta del endpoint de autenticación.
type AuthResult struct {
	Success bool
	UserID  string
	Token   string
	Message string
	Error   string
}
