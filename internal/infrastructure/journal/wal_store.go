package journal

import (
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"wallet_sync/internal/domain/entity"
)

const (
	defaultJournalDir   = "./wal/balance"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	snapshotKeyPrefix   = "balance_snapshot_"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	errNotInitialized = errors.New("balance snapshot journal is not initialized")
)

// WALStore is an append-only journal of computed balance snapshots. Records are keyed
// by wallet, and an in-memory index per wallet lets one consumer replay only its own history.
type WALStore struct {
	wal *gowal.Wal

	mu       sync.RWMutex
	byWallet map[string][]uint64 // wallet ID -> journal indices, ascending
}

// NewWALStore opens (or creates) the journal under dir and indexes the records already in it.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultJournalDir
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "snapshot_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open balance snapshot journal")
	}

	s := &WALStore{wal: wal, byWallet: make(map[string][]uint64)}
	for record := range wal.Iterator() {
		if id, ok := walletIDOf(record.Key); ok {
			s.byWallet[id] = append(s.byWallet[id], record.Index)
		}
	}
	return s, nil
}

func snapshotKey(w entity.Wallet) string {
	return snapshotKeyPrefix + w.ID()
}

func walletIDOf(key string) (string, bool) {
	id, ok := strings.CutPrefix(key, snapshotKeyPrefix)
	return id, ok && id != ""
}

// Save appends snapshot under the next journal index.
func (s *WALStore) Save(snapshot entity.BalanceSnapshot) error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}
	if snapshot.Address == "" {
		return errors.New("balance snapshot address is required")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "marshal balance snapshot")
	}
	wallet := entity.Wallet{Address: snapshot.Address, Network: snapshot.Network}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(index, snapshotKey(wallet), payload); err != nil {
		return errors.Wrapf(err, "journal snapshot of %s", wallet.ID())
	}
	s.byWallet[wallet.ID()] = append(s.byWallet[wallet.ID()], index)
	return nil
}

// SnapshotsAfter returns the snapshots of every wallet journaled after index, oldest first.
func (s *WALStore) SnapshotsAfter(index uint64) ([]entity.SnapshotRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errNotInitialized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return []entity.SnapshotRecord{}, nil
	}

	indices := make([]uint64, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		indices = append(indices, idx)
	}
	return s.readLocked(indices)
}

// WalletSnapshotsAfter returns the snapshots of wallet journaled after index, oldest first.
func (s *WALStore) WalletSnapshotsAfter(wallet entity.Wallet, index uint64) ([]entity.SnapshotRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errNotInitialized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.byWallet[wallet.ID()]
	from := sort.Search(len(all), func(i int) bool { return all[i] > index })
	return s.readLocked(all[from:])
}

// readLocked decodes the records at indices. Indices dropped by segment rotation are skipped.
func (s *WALStore) readLocked(indices []uint64) ([]entity.SnapshotRecord, error) {
	records := make([]entity.SnapshotRecord, 0, len(indices))
	for _, idx := range indices {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "read balance snapshot %d", idx)
		}
		if _, ok := walletIDOf(key); !ok {
			continue
		}
		var snapshot entity.BalanceSnapshot
		if err := json.Unmarshal(payload, &snapshot); err != nil {
			return nil, errors.Wrapf(err, "decode balance snapshot %d", idx)
		}
		records = append(records, entity.SnapshotRecord{Index: idx, Snapshot: snapshot})
	}
	return records, nil
}

func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errNotInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
