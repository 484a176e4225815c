package main

import (
	"fmt"
	"os"

	"machinery-service/internal/config"
)

func main() {
	if err := RootCommand(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
