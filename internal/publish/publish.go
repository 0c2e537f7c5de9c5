// Package publish declares the e-commerce publishing collaborator. The wire
// protocol (XML/webservice) is owned by the adapter implementation, which
// lives outside this module; it consumes the validated product read-only.
package publish

import (
	"context"

	"github.com/mvirta/productgen/internal/model"
)

// Publisher pushes a validated product to the e-commerce platform and
// returns the platform's identifier for the created listing.
type Publisher interface {
	Publish(ctx context.Context, product *model.UnifiedProduct) (string, error)
}
