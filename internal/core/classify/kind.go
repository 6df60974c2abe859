package classify

import (
	"errors"

	"github.com/vietddude/paramretry/internal/core/domain"
)

type sentinelKind struct {
	name   string
	target error
}

func (k sentinelKind) Name() string { return k.name }

func (k sentinelKind) Match(err error) bool { return errors.Is(err, k.target) }

// Sentinel returns a kind matching target and every error wrapping it.
func Sentinel(name string, target error) domain.Kind {
	return sentinelKind{name: name, target: target}
}

type typeKind[T error] struct {
	name string
}

func (k typeKind[T]) Name() string { return k.name }

func (k typeKind[T]) Match(err error) bool {
	var target T
	return errors.As(err, &target)
}

// Type returns a kind matching any error in the chain assignable to T. T may
// be a concrete error type or an interface.
func Type[T error](name string) domain.Kind {
	return typeKind[T]{name: name}
}

type funcKind struct {
	name  string
	match func(error) bool
}

func (k funcKind) Name() string { return k.name }

func (k funcKind) Match(err error) bool { return k.match(err) }

// Func returns a kind backed by an arbitrary predicate.
func Func(name string, match func(error) bool) domain.Kind {
	return funcKind{name: name, match: match}
}
