package main

import (
	"context"
	"os"
	"time"

	"github.com/shandysiswandi/gomfa/internal/app"
)

func main() {
	application := app.New()             // Wire config, libraries and commands
	code := application.Run(os.Args[1:]) // Execute the requested command
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	application.Stop(ctx) // Flush telemetry and close resources
	cancel()
	os.Exit(code)
}
