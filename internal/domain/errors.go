package domain

import "errors"

// Errores de dominio que el orquestador distingue con errors.Is.
var (
	ErrNotConnected    = errors.New("session not connected")
	ErrTokenRequired   = errors.New("API token required")
	ErrAuthRejected    = errors.New("authentication rejected")
	ErrAuthInProgress  = errors.New("authentication already in progress or done")
	ErrStakeTooLow     = errors.New("stake below minimum")
	ErrNotTradable     = errors.New("prediction is not tradable")
	ErrRejected        = errors.New("request rejected by backend")
	ErrUnknownMarket   = errors.New("unknown market")
	ErrUnknownTemplate = errors.New("unknown bot template")
	ErrNoBot           = errors.New("no bot created")
)
