package remotelist

import (
	"context"

	"github.com/Makepad-fr/menuadmin/internal/model"
)

// Lister reads a whole collection.
type Lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// FieldSetter writes one boolean field of one record.
type FieldSetter interface {
	SetField(ctx context.Context, id, field string, value bool) error
}

// Deleter removes one record.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Backend is everything a ViewModel needs from the server side.
type Backend[T any] interface {
	Lister[T]
	FieldSetter
	Deleter
}

// Accessors give the view model identity, text and flag access to an
// otherwise opaque record type.
type Accessors[T any] struct {
	Key      func(T) string
	Text     func(T, string) (string, bool)
	Flag     func(T, string) (bool, bool)
	WithFlag func(T, string, bool) (T, bool)
}

// EntityAccessors builds Accessors from the methods of a model.Entity.
func EntityAccessors[T model.Entity[T]]() Accessors[T] {
	return Accessors[T]{
		Key:      func(v T) string { return v.Key() },
		Text:     func(v T, f string) (string, bool) { return v.Text(f) },
		Flag:     func(v T, f string) (bool, bool) { return v.Flag(f) },
		WithFlag: func(v T, f string, b bool) (T, bool) { return v.WithFlag(f, b) },
	}
}
