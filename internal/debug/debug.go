// Package debug provides gated trace output. Every helper takes an
// enabled flag so callers can thread a single --debug switch through
// the pipeline without conditionals at each call site.
package debug

import (
	"fmt"
	"log"
	"time"
)

// Header prints the trace opening marker if debugging is enabled
func Header(enabled bool) {
	if enabled {
		log.Printf("=== DEBUG START ===")
	}
}

// Footer prints the trace closing marker if debugging is enabled
func Footer(enabled bool) {
	if enabled {
		log.Printf("=== DEBUG END ===")
	}
}

// Output prints a trace line with a millisecond timestamp if debugging
// is enabled
func Output(enabled bool, format string, args ...interface{}) {
	if enabled {
		timestamp := time.Now().Format("15:04:05.000")
		message := fmt.Sprintf(format, args...)
		log.Printf("[%s] %s", timestamp, message)
	}
}

// Timing measures and logs execution time if debugging is enabled
func Timing(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}

	start := time.Now()
	Output(enabled, "Starting: %s", operation)

	return func() {
		duration := time.Since(start)
		Output(enabled, "Completed: %s (took %v)", operation, duration)
	}
}
