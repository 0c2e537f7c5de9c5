// Probes every configured provider with a minimal completion and reports
// connectivity and latency.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/config"
	"github.com/mvirta/productgen/internal/provider"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	config.LoadEnvFile()

	registry := provider.DefaultRegistry()
	available := registry.Available()
	if len(available) == 0 {
		fmt.Println("no providers configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	failed := false
	for _, p := range available {
		status := p.TestConnection(ctx)
		if status.OK {
			fmt.Printf("%-10s ok      %s  models=%v\n", p.ID(), status.Latency.Round(time.Millisecond), p.Models())
		} else {
			failed = true
			fmt.Printf("%-10s FAILED  %s\n", p.ID(), status.Error)
		}
	}
	if failed {
		os.Exit(1)
	}
}
