package commerce

import (
	"errors"
	"fmt"
)

// Kind identifie la famille d'une erreur métier, stable côté client.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidState      Kind = "INVALID_STATE"
	KindConflict          Kind = "CONFLICT"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindStorage           Kind = "STORAGE"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func storageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: "erreur d'accès à la base de données", Err: err}
}

// KindOf retourne la famille d'une erreur, KindStorage par défaut
// (tout échec inattendu est traité comme un échec de persistance,
// rejouable puisque l'opération entière a été annulée).
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindStorage
}

// MessageOf retourne le message lisible d'une erreur métier.
func MessageOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return "erreur interne"
}
