package mesh

import (
	"context"
	"time"
)

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go -source=./interface.go

// prober issues the lightweight probes the mesh uses to track peer health.
type prober interface {
	GetBlockCount(ctx context.Context, endpoint string) (uint32, time.Duration, error)
	GetVersion(ctx context.Context, endpoint string) (string, error)
}
