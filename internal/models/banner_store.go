package models

import (
	"sync"
	"sync/atomic"
)

// BannerStore provides read access to an immutable snapshot of the configured
// banner list. Selection reads one snapshot per call; writers swap in a whole
// new list atomically so the hot path never takes a lock.
type BannerStore interface {
	// GetBanners returns the banner list in stored order. Absence of data
	// yields an empty slice, never an error.
	GetBanners() []Banner
	// GetBanner returns the banner at the given positional index.
	GetBanner(index int) (Banner, bool)
	// Count returns the number of configured banners.
	Count() int

	// SetBanners replaces the whole list. Positional identity is implied
	// by slice order, so replacing the list reassigns indexes densely.
	SetBanners(banners []Banner) error
}

// InMemoryBannerStore implements BannerStore with atomic snapshot swaps.
type InMemoryBannerStore struct {
	snapshot atomic.Value // []Banner
	writeMu  sync.Mutex
}

// NewInMemoryBannerStore returns an empty store.
func NewInMemoryBannerStore() *InMemoryBannerStore {
	s := &InMemoryBannerStore{}
	s.snapshot.Store([]Banner{})
	return s
}

// GetBanners returns the current snapshot. Callers must not mutate the
// returned slice or the banners in it.
func (s *InMemoryBannerStore) GetBanners() []Banner {
	return s.snapshot.Load().([]Banner)
}

// GetBanner returns the banner at index from the current snapshot.
func (s *InMemoryBannerStore) GetBanner(index int) (Banner, bool) {
	banners := s.GetBanners()
	if index < 0 || index >= len(banners) {
		return Banner{}, false
	}
	return banners[index], true
}

// Count returns the number of banners in the current snapshot.
func (s *InMemoryBannerStore) Count() int {
	return len(s.GetBanners())
}

// SetBanners swaps in a new snapshot. The input is copied so later caller
// mutations cannot leak into the published snapshot.
func (s *InMemoryBannerStore) SetBanners(banners []Banner) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := make([]Banner, len(banners))
	copy(next, banners)
	s.snapshot.Store(next)
	return nil
}
