package app

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// testModeEnv matches guard.Env; importing guard here would switch every
// binary into test mode.
const testModeEnv = "ODYSSEY_POS_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

// parseTestMode accepts any strconv boolean spelling; anything else is off.
func parseTestMode(raw string) bool {
	on, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && on
}

// InTestMode reports whether the binaries should skip opening connections.
func InTestMode() bool {
	testModeOnce.Do(RefreshTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads the environment.
func RefreshTestMode() {
	testMode.Store(parseTestMode(os.Getenv(testModeEnv)))
}
