// Runs only the vision stage on local image files and prints the analysis.
// Useful for testing prompts without a full pipeline run.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/config"
	"github.com/mvirta/productgen/internal/failover"
	"github.com/mvirta/productgen/internal/pipeline"
	"github.com/mvirta/productgen/internal/provider"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()

	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: analyze <image file> ...")
	}

	var imgs []provider.ImageInput
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to read image")
		}
		imgs = append(imgs, provider.ImageInput{Data: data, MimeType: http.DetectContentType(data)})
	}

	stage := pipeline.NewVisionStage(failover.New(provider.DefaultRegistry()))
	analysis, err := stage.Analyze(context.Background(), imgs, "", "en")
	if err != nil {
		log.Fatal().Err(err).Msg("vision analysis failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(analysis)
}
