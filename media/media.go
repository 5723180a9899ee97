package media

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go-homereel/types"
)

// Set is the ordered collection of assets for one session. It owns the
// assets once they're added: ordering and role tags change only through
// these methods.
type Set struct {
	mu     sync.Mutex
	assets []types.ImageAsset
	byID   map[string]int // id -> index in assets
}

func NewSet() *Set {
	return &Set{byID: make(map[string]int)}
}

// Add appends an asset. Fetched tiles (satellite/street) are idempotent
// by fingerprint: re-adding the same tile updates its role instead of
// duplicating it. Returns the asset id actually stored.
func (s *Set) Add(asset types.ImageAsset, role types.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if asset.Source != types.SourceUser && asset.Fingerprint != "" {
		for i := range s.assets {
			if s.assets[i].Source != types.SourceUser && s.assets[i].Fingerprint == asset.Fingerprint {
				s.assets[i].Role = role
				return s.assets[i].ID
			}
		}
	}

	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	asset.Role = role
	s.byID[asset.ID] = len(s.assets)
	s.assets = append(s.assets, asset)
	return asset.ID
}

// Reorder replaces the ordering with the given permutation of current
// ids. Anything that isn't a total permutation (unknown id, missing id,
// duplicate) is rejected and the current order stays.
func (s *Set) Reorder(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) != len(s.assets) {
		return fmt.Errorf("%w: got %d ids, set has %d assets", types.ErrInvalidReorder, len(ids), len(s.assets))
	}

	seen := make(map[string]bool, len(ids))
	reordered := make([]types.ImageAsset, 0, len(ids))
	for _, id := range ids {
		idx, ok := s.byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown asset id %s", types.ErrInvalidReorder, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate asset id %s", types.ErrInvalidReorder, id)
		}
		seen[id] = true
		reordered = append(reordered, s.assets[idx])
	}

	s.assets = reordered
	for i, a := range s.assets {
		s.byID[a.ID] = i
	}
	return nil
}

// List returns the assets in display order. The slice is a copy; asset
// pixel buffers are shared but immutable.
func (s *Set) List() []types.ImageAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ImageAsset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Len returns the number of assets.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// Get looks an asset up by id.
func (s *Set) Get(id string) (types.ImageAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return types.ImageAsset{}, false
	}
	return s.assets[idx], true
}
