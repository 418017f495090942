package carepackage

import "errors"

// ErrParse is returned when a CarePackage or LoginPackage document doesn't
// decode into a structured object, or a required field is missing or has
// the wrong shape.
var ErrParse = errors.New("carepackage: parse error")
