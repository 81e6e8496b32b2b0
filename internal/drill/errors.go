package drill

import "errors"

// Sentinel errors for the drill package.
var (
	ErrEmptyAlphabet = errors.New("drill: alphabet is empty")
	ErrInvalidConfig = errors.New("drill: invalid configuration")
)
