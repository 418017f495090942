package accountdir

import "errors"

var (
	// ErrNotFound is returned by ReadPackage when the requested package
	// file doesn't exist in the slot.
	ErrNotFound = errors.New("accountdir: package not found")

	// ErrSlotNotFound is returned when an operation names a slot that
	// doesn't exist in the store.
	ErrSlotNotFound = errors.New("accountdir: slot not found")
)
