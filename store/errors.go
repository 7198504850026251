package store

import "fmt"

// ErrUnknownComponent is returned when a caller addresses a component type
// that was never registered.
var ErrUnknownComponent = fmt.Errorf("store: unknown component")

// ErrIndexOutOfRange is returned when a caller addresses row i >= N.
var ErrIndexOutOfRange = fmt.Errorf("store: index out of range")

// ErrAlreadyFrozen is returned when RegisterComponent is called after the
// first frame has started.
var ErrAlreadyFrozen = fmt.Errorf("store: component set is frozen")

// ErrUnknownField is returned when a caller addresses a field that was not
// part of a component's registered field spec.
var ErrUnknownField = fmt.Errorf("store: unknown field")

// ErrFieldKindMismatch is returned when a caller requests a column as the
// wrong primitive type (e.g. F32Column on a component registered with u8
// fields).
var ErrFieldKindMismatch = fmt.Errorf("store: field kind mismatch")

func unknownComponent(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownComponent, name)
}

func indexOutOfRange(i, n int) error {
	return fmt.Errorf("%w: row %d, N=%d", ErrIndexOutOfRange, i, n)
}

func unknownField(component, field string) error {
	return fmt.Errorf("%w: %q on component %q", ErrUnknownField, field, component)
}

func fieldKindMismatch(component, field string) error {
	return fmt.Errorf("%w: %q on component %q", ErrFieldKindMismatch, field, component)
}
