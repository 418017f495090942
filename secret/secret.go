// Package secret provides a move-only, zero-on-release container for
// sensitive byte strings such as passwords and derived keys.
package secret

// Bytes owns a slice of secret material. The zero value holds no secret.
// Copying a Bytes by value shares the underlying array; callers that need
// an independent copy should call Reveal and re-wrap it.
type Bytes struct {
	b []byte
}

// New takes ownership of b and wraps it in a Bytes. Callers must not
// retain their own reference to b after calling New.
func New(b []byte) Bytes {
	return Bytes{b: b}
}

// IsZero reports whether the container holds no secret.
func (s Bytes) IsZero() bool {
	return s.b == nil
}

// Len returns the length of the underlying secret, or 0 if empty.
func (s Bytes) Len() int {
	return len(s.b)
}

// Reveal returns the underlying byte slice. The returned slice aliases the
// container's storage; it becomes invalid after Destroy is called.
func (s Bytes) Reveal() []byte {
	return s.b
}

// Equal reports whether the secret's bytes are identical to other. It runs
// in constant time with respect to the shorter of the two inputs so a
// mismatched byte doesn't leak timing information about where it occurs.
func (s Bytes) Equal(other []byte) bool {
	if len(s.b) != len(other) {
		return false
	}
	var diff byte
	for i := range s.b {
		diff |= s.b[i] ^ other[i]
	}
	return diff == 0
}

// Destroy overwrites the secret's storage with zeros. It is safe to call
// Destroy more than once or on a zero value.
func (s Bytes) Destroy() {
	for i := range s.b {
		s.b[i] = 0
	}
}
