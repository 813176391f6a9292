package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	lvlerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

const blockPrefix = 'b'

// LevelDBStore persists block copies in a LevelDB database. Keys are
// prefix + big-endian height + source endpoint, which keeps copies of one
// height adjacent and heights globally ordered.
type LevelDBStore struct {
	db     *leveldb.DB
	path   string
	logger *zap.Logger
}

type Opt func(*LevelDBStore)

func WithLogger(logger *zap.Logger) Opt {
	return func(s *LevelDBStore) {
		s.logger = logger
	}
}

// Open opens (or creates) the store at path, recovering a corrupted
// database in place.
func Open(path string, opts ...Opt) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     16 * opt.MiB,
		WriteBuffer:            8 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*lvlerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open block store: %w", err)
	}
	store := &LevelDBStore{db: db, path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// InMemory returns a store backed by leveldb's memory storage, for tests.
func InMemory(opts ...Opt) *LevelDBStore {
	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		panic(err)
	}
	store := &LevelDBStore{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Path returns the database directory, empty for in-memory stores.
func (s *LevelDBStore) Path() string {
	return s.path
}

func copyKey(height types.Height, source string) []byte {
	key := make([]byte, 0, 5+len(source))
	key = append(key, blockPrefix)
	key = binary.BigEndian.AppendUint32(key, height.Uint32())
	return append(key, source...)
}

func heightRange(from, to types.Height) *util.Range {
	return &util.Range{Start: copyKey(from, ""), Limit: copyKey(to+1, "")}
}

func decodeKey(key []byte) (types.Height, bool) {
	if len(key) < 5 || key[0] != blockPrefix {
		return 0, false
	}
	return types.Height(binary.BigEndian.Uint32(key[1:5])), true
}

func (s *LevelDBStore) SaveBlock(block *types.Block) error {
	if block.Hash == "" {
		block.Hash = types.CalcHash(block.Data)
	}
	value, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("encode block %s: %w", block.Height, err)
	}
	if err := s.db.Put(copyKey(block.Height, block.Source), value, nil); err != nil {
		return fmt.Errorf("save block %s: %w", block.Height, err)
	}
	return nil
}

func (s *LevelDBStore) GetBlock(height types.Height) (*types.Block, error) {
	copies, err := s.Copies(height)
	if err != nil {
		return nil, err
	}
	if len(copies) == 0 {
		return nil, ErrNotFound
	}
	return copies[0], nil
}

func (s *LevelDBStore) Copies(height types.Height) ([]*types.Block, error) {
	var copies []*types.Block
	it := s.db.NewIterator(heightRange(height, height), nil)
	defer it.Release()
	for it.Next() {
		block := &types.Block{}
		if err := json.Unmarshal(it.Value(), block); err != nil {
			return nil, fmt.Errorf("decode block %s: %w", height, err)
		}
		copies = append(copies, block)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("iterate copies %s: %w", height, err)
	}
	return copies, nil
}

func (s *LevelDBStore) CountCopies(height types.Height) (int, error) {
	count := 0
	it := s.db.NewIterator(heightRange(height, height), nil)
	defer it.Release()
	for it.Next() {
		count++
	}
	if err := it.Error(); err != nil {
		return 0, fmt.Errorf("count copies %s: %w", height, err)
	}
	return count, nil
}

func (s *LevelDBStore) CopyCounts(from, to types.Height) (map[types.Height]int, error) {
	counts := make(map[types.Height]int)
	it := s.db.NewIterator(heightRange(from, to), nil)
	defer it.Release()
	for it.Next() {
		if height, ok := decodeKey(it.Key()); ok {
			counts[height]++
		}
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("scan copy counts [%s, %s]: %w", from, to, err)
	}
	return counts, nil
}

func (s *LevelDBStore) DeleteBlock(height types.Height, source string) error {
	if err := s.db.Delete(copyKey(height, source), nil); err != nil {
		return fmt.Errorf("delete block %s: %w", height, err)
	}
	return nil
}

func (s *LevelDBStore) BlockCount() (uint64, error) {
	var (
		count uint64
		last  types.Height
		seen  bool
	)
	it := s.db.NewIterator(util.BytesPrefix([]byte{blockPrefix}), nil)
	defer it.Release()
	for it.Next() {
		height, ok := decodeKey(it.Key())
		if !ok {
			continue
		}
		if !seen || height != last {
			count++
			last = height
			seen = true
		}
	}
	if err := it.Error(); err != nil {
		return 0, fmt.Errorf("count blocks: %w", err)
	}
	return count, nil
}

func (s *LevelDBStore) HighestHeight() (types.Height, bool, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte{blockPrefix}), nil)
	defer it.Release()
	if !it.Last() {
		return 0, false, it.Error()
	}
	height, ok := decodeKey(it.Key())
	if !ok {
		return 0, false, nil
	}
	return height, true, nil
}

func (s *LevelDBStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close block store: %w", err)
	}
	return nil
}
