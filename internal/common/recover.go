package common

import (
	"fmt"
	"runtime"

	"github.com/ternarybob/arbor"
)

// SafeCall runs fn, converting a panic into an error.
func SafeCall(logger arbor.ILogger, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)

			if logger != nil {
				logger.Error().
					Str("call", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(buf[:n])).
					Msg("Recovered from panic")
			}
			err = fmt.Errorf("internal error in %s: %v", name, r)
		}
	}()
	return fn()
}
