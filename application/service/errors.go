package service

import "errors"

// ErrValidation indicates malformed caller input.
var ErrValidation = errors.New("validation error")
