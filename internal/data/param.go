package data

import (
	"github.com/xtxerr/flightlog/internal/errors"
)

// Param is a single scalar value with no time axis, e.g. a flight count.
type Param[T Number] struct {
	meta
	value   T
	present bool
}

// NewParam creates an empty parameter at the given full path.
func NewParam[T Number](fullpath, units string) *Param[T] {
	return &Param[T]{meta: newMeta(fullpath, units)}
}

// Set stores the value, replacing any previous one.
func (p *Param[T]) Set(v T) {
	p.value = v
	p.present = true
}

// Value returns the stored value.
func (p *Param[T]) Value() (T, bool) {
	return p.value, p.present
}

func (p *Param[T]) Len() int {
	if p.present {
		return 1
	}
	return 0
}

func (p *Param[T]) Empty() bool { return !p.present }

// EpochEnd equals EpochStart: a parameter covers no time span of its own.
func (p *Param[T]) EpochEnd() uint64 {
	if !p.present {
		return 0
	}
	return p.epochStart
}

// Clear drops the value but keeps metadata.
func (p *Param[T]) Clear() { p.present = false; var zero T; p.value = zero }

// Clone returns a copy.
func (p *Param[T]) Clone() Channel {
	cp := *p
	return &cp
}

// Merge applies last-write-wins: a present incoming value replaces the
// stored one. An empty incoming parameter changes nothing.
func (p *Param[T]) Merge(other Channel) error {
	o, ok := other.(*Param[T])
	if !ok {
		return errors.Wrap(errors.ErrTypeMismatch, "merge %q", p.path)
	}
	if o.present {
		p.value = o.value
		p.present = true
	}
	return nil
}
