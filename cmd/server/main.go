package main

import (
	"log/slog"
	"os"

	"github.com/s6816011857053-star/on-boarding/internal/app/server"
)

func main() {
	if err := server.Run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
