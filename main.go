package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/config"
	"github.com/mvirta/productgen/internal/failover"
	"github.com/mvirta/productgen/internal/images"
	"github.com/mvirta/productgen/internal/model"
	"github.com/mvirta/productgen/internal/pipeline"
	"github.com/mvirta/productgen/internal/provider"
	"github.com/mvirta/productgen/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		hint      = flag.String("hint", "", "optional hint about the product for the AI")
		lang      = flag.String("lang", "en", "language for generated text (e.g. en, de)")
		name      = flag.String("name", "", "product name (overrides generated)")
		brand     = flag.String("brand", "", "brand name")
		ean       = flag.String("ean", "", "EAN identifier")
		sku       = flag.String("sku", "", "SKU identifier")
		gross     = flag.Float64("price", 0, "gross price")
		net       = flag.Float64("net", 0, "net price (derived from gross and VAT when omitted)")
		vat       = flag.Float64("vat", 0, "VAT rate in percent")
		currency  = flag.String("currency", "", "price currency (default EUR)")
		qty       = flag.Int("qty", 1, "stock quantity")
		condition = flag.String("condition", "", "product condition: new, used or refurbished")
		noCache   = flag.Bool("no-cache", false, "disable the vision analysis cache")
		verbose   = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	config.LoadEnvFile()
	if !hasProviderKey() {
		if isInteractiveTerminal() {
			if !runSetupWizard() {
				os.Exit(1)
			}
		} else {
			log.Fatal().Msgf("no provider configured: set one of %s", strings.Join(providerKeyVars, ", "))
		}
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: productgen [flags] <image file or URL> ...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx := context.Background()
	registry := provider.DefaultRegistry()
	orchestrator := failover.New(registry)

	p, err := pipeline.New(orchestrator)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build pipeline")
	}

	fetcher := images.NewFetcher(images.FetcherOpts{})
	p.WithFetcher(fetcher)

	if !*noCache {
		if store := openAnalysisCache(); store != nil {
			defer store.Close()
			p.WithVisionAnalyzer(pipeline.NewCachedVisionStage(pipeline.NewVisionStage(orchestrator), store))
		}
	}

	input, err := buildInput(ctx, fetcher, flag.Args())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load images")
	}
	input.UserHint = *hint
	input.Raw = &model.RawData{
		Name:       *name,
		Brand:      *brand,
		EAN:        *ean,
		SKU:        *sku,
		GrossPrice: *gross,
		NetPrice:   *net,
		VATRate:    *vat,
		Currency:   *currency,
		Quantity:   *qty,
		Condition:  *condition,
	}

	output := p.Run(ctx, input, pipeline.Options{
		Language: *lang,
		OnProgress: func(u pipeline.ProgressUpdate) {
			log.Info().
				Str("stage", u.Stage).
				Str("status", u.Status.String()).
				Int("progress", u.Progress).
				Msg(u.Message)
		},
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		log.Fatal().Err(err).Msg("failed to encode output")
	}

	if output.Status == pipeline.StatusFailed {
		os.Exit(1)
	}
}

// openAnalysisCache opens the SQLite analysis cache in the config directory.
// Returns nil when the cache cannot be opened; the pipeline runs uncached.
func openAnalysisCache() *storage.SQLiteStore {
	dir, err := config.Dir()
	if err != nil {
		log.Warn().Err(err).Msg("no config directory, running without analysis cache")
		return nil
	}
	store, err := storage.NewSQLiteStore(filepath.Join(dir, "productgen.db"))
	if err != nil {
		log.Warn().Err(err).Msg("failed to open analysis cache, running without it")
		return nil
	}
	return store
}

// buildInput loads the given image files or URLs into a pipeline input.
// Local files are read eagerly; URLs are fetched.
func buildInput(ctx context.Context, fetcher *images.Fetcher, args []string) (pipeline.Input, error) {
	in := pipeline.Input{Images: make([]pipeline.InputImage, len(args))}
	for i, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			data, mimeType, err := fetcher.Fetch(ctx, arg)
			if err != nil {
				return in, err
			}
			in.Images[i] = pipeline.InputImage{URL: arg, Data: data, MimeType: mimeType}
			continue
		}

		data, err := os.ReadFile(arg)
		if err != nil {
			return in, fmt.Errorf("failed to read image file: %w", err)
		}
		in.Images[i] = pipeline.InputImage{
			URL:      "file://" + arg,
			Data:     data,
			MimeType: http.DetectContentType(data),
		}
	}
	return in, nil
}
