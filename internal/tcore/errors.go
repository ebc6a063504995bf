package tcore

import "fmt"

// CorruptError reports malformed or non-canonical bytes encountered while
// parsing a Thrift wire value.
type CorruptError struct {
	Path Path
	Msg  string
}

func (e *CorruptError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("corrupt thrift input: %s", e.Msg)
	}
	return fmt.Sprintf("corrupt thrift input at %s: %s", e.Path, e.Msg)
}

// NewCorruptError builds a CorruptError tagged with the current path.
func NewCorruptError(path Path, format string, args ...any) error {
	return &CorruptError{Path: append(Path(nil), path...), Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports an invalid encoder/decoder configuration.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "invalid config: " + e.Msg }

// NewConfigError builds a ConfigError.
func NewConfigError(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// DepthError reports that recursive descent exceeded its configured limit.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("exceeded maximum nesting depth of %d", e.Limit)
}

// NewDepthError builds a DepthError.
func NewDepthError(limit int) error { return &DepthError{Limit: limit} }

// VersionError reports that a feature requires a higher minimum format
// version than the config declares.
type VersionError struct {
	Feature string
	Have    int
	Need    int
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s requires format version >= %d, have %d", e.Feature, e.Need, e.Have)
}

// NewVersionError builds a VersionError.
func NewVersionError(feature string, have, need int) error {
	return &VersionError{Feature: feature, Have: have, Need: need}
}
