package main

import (
	"fmt"
	"os"

	"github.com/takumi/kissaten/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "kissaten: %v\n", err)
		os.Exit(1)
	}
}
