package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/minsu/bakehouse/internal/app"
)

func main() {
	// .env가 없는 환경(운영)에서는 조용히 무시한다.
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
