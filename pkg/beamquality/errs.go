package beamquality

import "errors"

// ErrMissingTable indicates an Input without its energy-transfer or attenuation table.
var ErrMissingTable = errors.New("beamquality: missing coefficient table")
