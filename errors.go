package rlog

import "errors"

// Configuration errors
var (
	ErrInvalidLevel       = errors.New("rlog: invalid level")
	ErrInvalidConfig      = errors.New("rlog: invalid configuration")
	ErrUnknownWriter      = errors.New("rlog: unknown writer type")
	ErrInvalidPolicy      = errors.New("rlog: invalid rolling policy")
	ErrInvalidPattern     = errors.New("rlog: invalid pattern")
	ErrUnsupportedCharset = errors.New("rlog: unsupported charset")
)

// Lifecycle errors
var (
	ErrShutdown = errors.New("rlog: provider is shut down")
)
