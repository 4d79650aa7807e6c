/*
gcmtools - Utilities for building and extracting GameCube disc images (GCM).

Copyright © 2025 Hans Bonini
*/
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/hansbonini/gcmtools/cmd"
)

// Version information (injected at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Check for version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("gcmtools %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		os.Exit(0)
	}

	cmd.Execute()
}
