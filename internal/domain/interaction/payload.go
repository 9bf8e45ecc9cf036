package interaction

import (
	"fmt"

	"github.com/jonny/interactbot/internal/domain/model"
)

type payloadKind int

const (
	payloadNone payloadKind = iota
	payloadRaw
	payloadSerializable
)

// Payload is either a finished value or a builder that serializes into one.
type Payload[T any] struct {
	kind   payloadKind
	value  T
	source model.Serializable[T]
}

func Raw[T any](v T) Payload[T] {
	return Payload[T]{kind: payloadRaw, value: v}
}

func From[T any](s model.Serializable[T]) Payload[T] {
	return Payload[T]{kind: payloadSerializable, source: s}
}

func (p Payload[T]) Resolve() (T, error) {
	var zero T
	switch p.kind {
	case payloadRaw:
		return p.value, nil
	case payloadSerializable:
		if p.source == nil {
			return zero, ErrEmptyPayload
		}
		v, err := p.source.Serialize()
		if err != nil {
			return zero, fmt.Errorf("serializing payload: %w", err)
		}
		return v, nil
	default:
		return zero, ErrEmptyPayload
	}
}
