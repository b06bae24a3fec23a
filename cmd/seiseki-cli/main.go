package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/WasedaCreators/seiseki-viewer/lib/serviceutil"
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}),
	))

	err := rootCmd.ExecuteContext(serviceutil.SignalContext())
	if err != nil {
		os.Exit(1)
	}
}
