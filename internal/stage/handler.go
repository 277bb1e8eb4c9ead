package stage

import (
	"context"

	"stockmate/internal/catalog"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *catalog.Item) error
	Execute(context.Context, *catalog.Item) error
	HealthCheck(context.Context) Health
}
