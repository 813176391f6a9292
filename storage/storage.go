// Package storage implements the persistent block store. Copies are keyed by
// height and source node so that redundant copies fetched from independent
// sources coexist until pruned.
package storage

import (
	"errors"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

// ErrNotFound is returned when no copy is stored for the requested height.
var ErrNotFound = errors.New("storage: block not found")

// Store is the interface the syncer drives. Implementations must be safe for
// concurrent use.
type Store interface {
	// BlockCount returns the number of distinct heights with at least one
	// stored copy.
	BlockCount() (uint64, error)
	// GetBlock returns one stored copy for the height, or ErrNotFound.
	GetBlock(height types.Height) (*types.Block, error)
	// SaveBlock persists a copy. Copies are keyed by source, so saving the
	// same height from the same source twice overwrites in place while
	// copies from distinct sources accumulate.
	SaveBlock(block *types.Block) error
	// DeleteBlock removes the copy fetched from the given source.
	DeleteBlock(height types.Height, source string) error
	// Copies returns all stored copies for the height, oldest key first.
	Copies(height types.Height) ([]*types.Block, error)
	// CountCopies returns the number of stored copies for the height.
	CountCopies(height types.Height) (int, error)
	// CopyCounts returns per-height copy counts for heights in [from, to]
	// that have at least one copy. Heights absent from the result are gaps.
	CopyCounts(from, to types.Height) (map[types.Height]int, error)
	// HighestHeight returns the greatest height with at least one copy.
	// ok is false when the store is empty.
	HighestHeight() (height types.Height, ok bool, err error)
	Close() error
}
