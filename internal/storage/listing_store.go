package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"fave/go-backend/internal/securestore"
	"fave/go-backend/pkg/models"
)

var ErrListingIDConflict = errors.New("listing id conflict")

// ListingStore is the catalog of persisted work listings. Listings are
// insert-only; nothing here mutates a listing after Save.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]models.WorkListing
	path     string
	secret   string
}

func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]models.WorkListing)}
}

func NewPersistentListingStore(path, passphrase string) (*ListingStore, error) {
	s := &ListingStore{
		listings: make(map[string]models.WorkListing),
		path:     path,
		secret:   passphrase,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ListingStore) Save(listing models.WorkListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listing.ID]; ok {
		return ErrListingIDConflict
	}
	next := cloneListingsMap(s.listings)
	next[listing.ID] = listing
	if err := s.persistSnapshotLocked(next); err != nil {
		return err
	}
	s.listings = next
	return nil
}

func (s *ListingStore) Get(id string) (models.WorkListing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	listing, ok := s.listings[id]
	return listing, ok
}

func (s *ListingStore) FindByCreator(creatorID string) []models.WorkListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.WorkListing
	for _, listing := range s.listings {
		if listing.CreatorID == creatorID {
			out = append(out, listing)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *ListingStore) FindByWork(creatorID, workID string) (models.WorkListing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if workID == "" {
		return models.WorkListing{}, false
	}
	for _, listing := range s.listings {
		if listing.CreatorID == creatorID && listing.WorkID == workID {
			return listing, true
		}
	}
	return models.WorkListing{}, false
}

// List returns listings newest first. A limit of 0 means no limit.
func (s *ListingStore) List(limit, offset int) []models.WorkListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.WorkListing, 0, len(s.listings))
	for _, listing := range s.listings {
		all = append(all, listing)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func (s *ListingStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

func (s *ListingStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	decoded, err := decodeStoreFile(data, s.secret)
	if err != nil {
		return err
	}
	var snapshot struct {
		Listings map[string]models.WorkListing `json:"listings"`
	}
	if err := unmarshalStoreSnapshot(decoded, &snapshot); err != nil {
		return err
	}
	if snapshot.Listings != nil {
		s.listings = snapshot.Listings
	}
	return nil
}

func (s *ListingStore) persistSnapshotLocked(listings map[string]models.WorkListing) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	snapshot := struct {
		Listings map[string]models.WorkListing `json:"listings"`
	}{Listings: listings}
	return writeStoreSnapshot(s.path, s.secret, snapshot)
}

func cloneListingsMap(in map[string]models.WorkListing) map[string]models.WorkListing {
	out := make(map[string]models.WorkListing, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func decodeStoreFile(data []byte, secret string) ([]byte, error) {
	if secret == "" {
		return data, nil
	}
	decoded, err := securestore.Decrypt(secret, data)
	if err != nil {
		if errors.Is(err, securestore.ErrLegacyData) {
			return data, nil
		}
		return nil, err
	}
	return decoded, nil
}
