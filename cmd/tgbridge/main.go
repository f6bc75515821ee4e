package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/iota-uz/tgbridge/pkg/configuration"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			fmt.Fprintln(os.Stderr, r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()
	Execute()
}
