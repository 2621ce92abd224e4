package model

import "fmt"

// ConfigurationError reports a broken construction contract: a registry
// handle that does not resolve in a target instance, or a constraint that
// references an unknown variable. It always indicates a programming or
// oracle error, never a runtime data condition.
type ConfigurationError struct {
	Op  string
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Op, e.Msg)
}
