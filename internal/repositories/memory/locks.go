package memory

import (
	"sort"
	"sync"
)

// keyedLocks hands out one mutex per key. Mutexes are created on first use
// and kept for the lifetime of the store.
type keyedLocks struct {
	mapMu sync.Mutex
	muMap map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{muMap: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mapMu.Lock()
	defer k.mapMu.Unlock()

	if _, exists := k.muMap[key]; !exists {
		k.muMap[key] = &sync.Mutex{}
	}
	return k.muMap[key]
}

// lockAll locks the given keys in ascending order and returns a function
// that releases them.
func (k *keyedLocks) lockAll(keys []string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		mu := k.get(key)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func accountKey(tenantID, code string) string {
	return "acct|" + tenantID + "|" + code
}

func entryKey(tenantID, entryNumber string) string {
	return "entry|" + tenantID + "|" + entryNumber
}
