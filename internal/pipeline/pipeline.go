package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mvirta/productgen/internal/model"
	"github.com/mvirta/productgen/internal/provider"
)

// ImageFetcher resolves an image URL to raw bytes and a mime type. Used for
// input images that arrive without preloaded data.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, mimeType string, err error)
}

// Pipeline sequences the three stages: vision, content, validation. Stages
// run strictly sequentially; a missing prerequisite skips later stages, a
// stage failure downgrades the overall status but never aborts the run.
type Pipeline struct {
	vision     VisionAnalyzer
	content    *ContentStage
	validation *ValidationStage
	fetcher    ImageFetcher
}

// New creates a pipeline over the given completer (normally the failover
// orchestrator).
func New(completer Completer) (*Pipeline, error) {
	validation, err := NewValidationStage()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		vision:     NewVisionStage(completer),
		content:    NewContentStage(completer),
		validation: validation,
	}, nil
}

// WithVisionAnalyzer replaces the vision stage, e.g. with a caching wrapper.
func (p *Pipeline) WithVisionAnalyzer(a VisionAnalyzer) *Pipeline {
	p.vision = a
	return p
}

// WithFetcher sets the fetcher used for input images without preloaded data.
func (p *Pipeline) WithFetcher(f ImageFetcher) *Pipeline {
	p.fetcher = f
	return p
}

// Run executes the pipeline for one input record. It always returns an
// Output; failures are reported in per-stage results and the overall status,
// never raised.
func (p *Pipeline) Run(ctx context.Context, in Input, opts Options) *Output {
	start := time.Now()
	out := &Output{RunID: uuid.NewString()}

	notify := func(stage string, status StageStatus, message string, progress int) {
		if opts.OnProgress == nil {
			return
		}
		update := ProgressUpdate{Stage: stage, Status: status, Message: message, Progress: progress}
		// Fire-and-forget: a slow or panicking observer must not stall the
		// pipeline.
		go func() {
			defer func() { _ = recover() }()
			opts.OnProgress(update)
		}()
	}

	visionData := p.runVision(ctx, in, opts, out, notify)
	contentData := p.runContent(ctx, in, opts, out, notify, visionData)
	p.runValidation(in, out, notify, visionData, contentData)

	switch {
	case out.Validation.Status == StageCompleted && out.Product != nil:
		out.Status = StatusCompleted
	case out.Vision.Status == StageCompleted || out.Content.Status == StageCompleted:
		out.Status = StatusPartial
	default:
		out.Status = StatusFailed
	}
	out.Duration = time.Since(start)

	notify("pipeline", StageCompleted, fmt.Sprintf("pipeline %s", out.Status), 100)
	log.Info().
		Str("runId", out.RunID).
		Str("status", out.Status.String()).
		Dur("duration", out.Duration).
		Msg("pipeline run finished")

	return out
}

// imageInputs returns the raw image payloads for the vision stage, fetching
// bytes for URL-only images when a fetcher is configured.
func (p *Pipeline) imageInputs(ctx context.Context, in Input) ([]provider.ImageInput, error) {
	images := make([]provider.ImageInput, len(in.Images))
	for i, img := range in.Images {
		if len(img.Data) > 0 {
			images[i] = provider.ImageInput{Data: img.Data, MimeType: img.MimeType}
			continue
		}
		if p.fetcher == nil {
			return nil, fmt.Errorf("image %d has no data and no fetcher is configured", i)
		}
		data, mimeType, err := p.fetcher.Fetch(ctx, img.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image %d: %w", i, err)
		}
		images[i] = provider.ImageInput{Data: data, MimeType: mimeType}
	}
	return images, nil
}

func (p *Pipeline) runVision(ctx context.Context, in Input, opts Options, out *Output, notify func(string, StageStatus, string, int)) *model.VisionAnalysis {
	if opts.SkipVision {
		out.Vision.Status = StageSkipped
		out.Vision.Value = opts.PriorVision
		notify("vision", StageSkipped, "vision analysis skipped", 30)
		return opts.PriorVision
	}

	notify("vision", StageRunning, "analyzing product images", 10)
	stageStart := time.Now()
	images, err := p.imageInputs(ctx, in)
	var analysis *model.VisionAnalysis
	if err == nil {
		analysis, err = p.vision.Analyze(ctx, images, in.UserHint, opts.Language)
	}
	out.Vision.Duration = time.Since(stageStart)

	if err != nil {
		out.Vision.Status = StageFailed
		out.Vision.Err = err.Error()
		out.Errors = append(out.Errors, fmt.Sprintf("vision: %s", err))
		notify("vision", StageFailed, "vision analysis failed", 30)
		return nil
	}
	out.Vision.Status = StageCompleted
	out.Vision.Value = analysis
	notify("vision", StageCompleted, "vision analysis complete", 40)
	return analysis
}

func (p *Pipeline) runContent(ctx context.Context, in Input, opts Options, out *Output, notify func(string, StageStatus, string, int), visionData *model.VisionAnalysis) *model.ContentGeneration {
	if opts.SkipContent {
		out.Content.Status = StageSkipped
		out.Content.Value = opts.PriorContent
		notify("content", StageSkipped, "content generation skipped", 60)
		return opts.PriorContent
	}
	if visionData == nil {
		// Prerequisite missing, not a failure of this stage.
		out.Content.Status = StageSkipped
		notify("content", StageSkipped, "content generation skipped: no vision analysis", 60)
		return nil
	}

	notify("content", StageRunning, "generating listing content", 45)
	stageStart := time.Now()
	content, err := p.content.Generate(ctx, visionData, in.UserHint, in.Raw, opts.Language, len(in.Images))
	out.Content.Duration = time.Since(stageStart)

	if err != nil {
		out.Content.Status = StageFailed
		out.Content.Err = err.Error()
		out.Errors = append(out.Errors, fmt.Sprintf("content: %s", err))
		notify("content", StageFailed, "content generation failed", 60)
		return nil
	}
	out.Content.Status = StageCompleted
	out.Content.Value = content
	notify("content", StageCompleted, "listing content generated", 70)
	return content
}

func (p *Pipeline) runValidation(in Input, out *Output, notify func(string, StageStatus, string, int), visionData *model.VisionAnalysis, contentData *model.ContentGeneration) {
	if visionData == nil || contentData == nil {
		out.Validation.Status = StageSkipped
		notify("validation", StageSkipped, "validation skipped: missing stage data", 90)
		return
	}

	notify("validation", StageRunning, "validating product record", 75)
	stageStart := time.Now()
	product, warnings, err := p.validation.Validate(in, visionData, contentData)
	out.Validation.Duration = time.Since(stageStart)

	if err != nil {
		out.Validation.Status = StageFailed
		out.Validation.Err = err.Error()
		out.Errors = append(out.Errors, fmt.Sprintf("validation: %s", err))
		notify("validation", StageFailed, "product validation failed", 90)
		return
	}
	out.Validation.Status = StageCompleted
	out.Validation.Value = product
	out.Product = product
	out.Warnings = warnings
	notify("validation", StageCompleted, "product record validated", 95)
}
