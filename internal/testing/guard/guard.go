// Package guard switches the binaries into test mode when imported, so test
// packages that touch startup code never open real connections.
package guard

import (
	"os"
	"sync"
)

// Env is the variable read by app.InTestMode; any strconv boolean works.
const Env = "ODYSSEY_POS_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(Env) == "" {
			_ = os.Setenv(Env, "1")
		}
	})
}
