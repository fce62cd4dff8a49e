package providers

import (
	"os"

	"github.com/spf13/cast"
)

const (
	RuntimeAuto    = "auto"
	RuntimeNative  = "native"
	RuntimeBrowser = "browser"

	// NativeShellEnv is set by the native wrapper when it launches the daemon.
	NativeShellEnv = "SOULHEALING_NATIVE_SHELL"
)

// DetectRuntime resolves the configured runtime. Anything other than an
// explicit native or browser value falls back to environment detection.
func DetectRuntime(configured string) string {
	switch configured {
	case RuntimeNative, RuntimeBrowser:
		return configured
	}
	if IsNativeShell() {
		return RuntimeNative
	}
	return RuntimeBrowser
}

func IsNativeShell() bool {
	return cast.ToBool(os.Getenv(NativeShellEnv))
}
