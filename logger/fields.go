package logger

import "go.uber.org/zap"

// Field is a structured logging field.
type Field = zap.Field

// Field constructors, re-exported from zap so callers never import it directly.
var (
	String   = zap.String
	Strings  = zap.Strings
	Int      = zap.Int
	Int64    = zap.Int64
	Float64  = zap.Float64
	Bool     = zap.Bool
	Time     = zap.Time
	Duration = zap.Duration
	Any      = zap.Any
	Error    = zap.Error
)
