package keymix

import (
	"fmt"

	"github.com/codahale/keymix/internal/mixreg"
)

// ConfigError reports a violation of a Context invariant detected before any keymix work
// begins: key size or shape, unknown primitive, invalid fanout, invalid thread count.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("keymix: configuration error: %s", e.Reason) }

// ResourceError reports an allocation or goroutine-spawn failure. Resource errors are
// fatal for the current call; the spec does not define partial output in this case.
type ResourceError struct {
	Reason string
}

func (e *ResourceError) Error() string { return fmt.Sprintf("keymix: resource error: %s", e.Reason) }

// PrimitiveError wraps a failure reported by the underlying mixing primitive for a given
// tag.
type PrimitiveError struct {
	Tag mixreg.Tag
	Err error
}

func (e *PrimitiveError) Error() string {
	return fmt.Sprintf("keymix: primitive %q failed: %v", e.Tag, e.Err)
}

func (e *PrimitiveError) Unwrap() error { return e.Err }
