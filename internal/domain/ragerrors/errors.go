package ragerrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindExtraction  Kind = "EXTRACTION"
	KindChunking    Kind = "CHUNKING"
	KindEmbedding   Kind = "EMBEDDING"
	KindVectorStore Kind = "VECTOR_STORE"
	KindRAG         Kind = "RAG"

	//transient embedding-backend faults, retried by the gateway
	KindRateLimit  Kind = "RATE_LIMIT"
	KindTimeout    Kind = "TIMEOUT"
	KindConnection Kind = "CONNECTION"
	KindBackend    Kind = "BACKEND"
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

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind carried by err, or KindRAG when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRAG
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsRetryable is the single predicate the backoff combinator consults.
// Only transient backend faults qualify; everything else fails immediately.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimit, KindTimeout, KindConnection, KindBackend:
		return true
	}
	return false
}
