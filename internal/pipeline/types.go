// Package pipeline implements the staged generation pipeline: vision
// analysis of product photographs, marketing content generation, and schema
// validation into the canonical unified product.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mvirta/productgen/internal/model"
	"github.com/mvirta/productgen/internal/provider"
)

// Completer is the slice of the failover orchestrator the stages consume.
type Completer interface {
	Complete(ctx context.Context, req provider.CompletionRequest) (*provider.CompletionResult, error)
	CompleteWithVision(ctx context.Context, req provider.VisionCompletionRequest) (*provider.CompletionResult, error)
}

// StageStatus is the lifecycle status of one pipeline stage.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageRunning
	StageCompleted
	StageFailed
	StageSkipped
)

// String returns a human-readable name for the StageStatus.
func (s StageStatus) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageRunning:
		return "running"
	case StageCompleted:
		return "completed"
	case StageFailed:
		return "failed"
	case StageSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// StageResult is the write-once outcome of one stage in one pipeline run.
type StageResult[T any] struct {
	Status   StageStatus   `json:"status"`
	Value    *T            `json:"value,omitempty"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Status is the overall outcome of a pipeline run.
type Status int

const (
	// StatusCompleted means validation completed and a product exists.
	StatusCompleted Status = iota
	// StatusPartial means vision or content completed but the pipeline did
	// not produce a validated product.
	StatusPartial
	// StatusFailed means no stage produced data.
	StatusFailed
)

// String returns a human-readable name for the Status.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// InputImage is one product image entering the pipeline. URL identifies the
// stored image for the final record; Data/MimeType carry the raw bytes for
// vision analysis and may be filled by the pipeline's fetcher when absent.
type InputImage struct {
	URL      string
	Data     []byte
	MimeType string
}

// Input is everything a pipeline run consumes.
type Input struct {
	Images   []InputImage
	UserHint string
	Raw      *model.RawData
}

// ProgressUpdate is a fire-and-forget notification emitted on each stage
// transition.
type ProgressUpdate struct {
	Stage    string
	Status   StageStatus
	Message  string
	Progress int // 0-100
}

// ProgressFunc observes pipeline progress. It runs on its own goroutine and
// must not be relied on for ordering.
type ProgressFunc func(ProgressUpdate)

// Options tune one pipeline run.
type Options struct {
	// SkipVision skips the vision stage; PriorVision supplies its output.
	SkipVision  bool
	PriorVision *model.VisionAnalysis
	// SkipContent skips the content stage; PriorContent supplies its output.
	SkipContent  bool
	PriorContent *model.ContentGeneration
	// Language for generated text, e.g. "en", "de". Empty means "en".
	Language   string
	OnProgress ProgressFunc
}

// Output is the assembled result of one pipeline run. It is always returned,
// never thrown: callers inspect per-stage results to see what succeeded.
type Output struct {
	RunID      string                               `json:"runId"`
	Vision     StageResult[model.VisionAnalysis]    `json:"vision"`
	Content    StageResult[model.ContentGeneration] `json:"content"`
	Validation StageResult[model.UnifiedProduct]    `json:"validation"`
	Product    *model.UnifiedProduct                `json:"product,omitempty"`
	Status     Status                               `json:"status"`
	Duration   time.Duration                        `json:"duration"`
	Errors     []string                             `json:"errors,omitempty"`
	Warnings   []string                             `json:"warnings,omitempty"`
}
