package thriftsplit

import "thriftsplit/internal/tcore"

// The error taxonomy is defined once, in internal/tcore, since both the
// protocol parsers and the stream/path-tree layers need to construct
// it. These aliases let callers outside the module errors.As into it
// without reaching into an internal package.
type (
	CorruptError = tcore.CorruptError
	ConfigError  = tcore.ConfigError
	DepthError   = tcore.DepthError
	VersionError = tcore.VersionError
)
