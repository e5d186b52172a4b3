package main

import (
	"fmt"
	"os"

	"hikelog/cmd"
	"hikelog/internal/app"
	"hikelog/internal/conf"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := &app.Context{Settings: settings}
	if err := cmd.RootCommand(ctx).Execute(); err != nil {
		os.Exit(1)
	}
}
