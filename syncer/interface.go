package syncer

import (
	"context"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go -source=./interface.go

// meshProvider is the syncer's view of the peer mesh.
type meshProvider interface {
	// Ready is closed once the mesh has enough active nodes to sync from.
	Ready() <-chan struct{}
	// Height is the greatest height observed on any active node.
	Height() types.Height
	// BestNode selects a fetch target, skipping the excluded endpoints.
	BestNode(except ...string) (types.NodeInfo, bool)
	Acquire(endpoint string) error
	Release(endpoint string)
}

// fetcher downloads raw blocks from a node endpoint.
type fetcher interface {
	GetBlock(ctx context.Context, endpoint string, index uint32) ([]byte, error)
}
