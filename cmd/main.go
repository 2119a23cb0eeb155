// Command breathpacer paces breathing with timed inhale and exhale phases,
// from the system tray or the terminal.
package main

import (
	"fmt"
	"os"
)

const (
	appName = "breathpacer"
	appID   = "com.breathpacer.app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
