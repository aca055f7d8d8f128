package main

import (
	"context"
	"fmt"
	"os"

	"github.com/easyeats/easyeats/internal/app"
)

func main() {
	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "easyeats:", err)
		os.Exit(1)
	}
}
