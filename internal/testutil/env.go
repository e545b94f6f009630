package testutil

import (
	"os"
	"testing"
)

// UnsetEnv removes keys from the environment for the duration of the test and
// restores their previous values on cleanup. It complements t.Setenv, which cannot
// express "not set".
func UnsetEnv(t testing.TB, keys ...string) {
	t.Helper()

	snapshot := make(map[string]*string, len(keys))
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			val := v
			snapshot[k] = &val
		} else {
			snapshot[k] = nil
		}
		_ = os.Unsetenv(k)
	}

	t.Cleanup(func() {
		for k, v := range snapshot {
			if v == nil {
				_ = os.Unsetenv(k)
			} else {
				_ = os.Setenv(k, *v)
			}
		}
	})
}
