package log

import "go.uber.org/zap"

var (
	Skip        = zap.Skip
	Binary      = zap.Binary
	Bool        = zap.Bool
	ByteString  = zap.ByteString
	Float64     = zap.Float64
	Float32     = zap.Float32
	Int         = zap.Int
	Int64       = zap.Int64
	Int32       = zap.Int32
	Uint        = zap.Uint
	Uint64      = zap.Uint64
	Uint32      = zap.Uint32
	String      = zap.String
	Strings     = zap.Strings
	Stringer    = zap.Stringer
	Time        = zap.Time
	Duration    = zap.Duration
	Any         = zap.Any
	ErrorField  = zap.Error
	NamedError  = zap.NamedError
	Object      = zap.Object
	Namespace   = zap.Namespace
	Reflect     = zap.Reflect
	StackSkip   = zap.StackSkip
	DurationP   = zap.Durationp
	ErrorsField = zap.Errors
)
