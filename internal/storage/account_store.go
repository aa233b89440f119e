package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fave/go-backend/pkg/models"
)

var (
	ErrAddressRequired   = errors.New("wallet address is required")
	ErrCreatorIDConflict = errors.New("creator id conflict")
	ErrFanIDConflict     = errors.New("fan id conflict")
)

// AccountStore holds creator and fan identity records. It is the identity
// collaborator of the listing pipeline: the orchestrator only reads from it.
type AccountStore struct {
	mu       sync.RWMutex
	creators map[string]models.Creator
	fans     map[string]models.Fan
	path     string
	secret   string
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		creators: make(map[string]models.Creator),
		fans:     make(map[string]models.Fan),
	}
}

func NewPersistentAccountStore(path, passphrase string) (*AccountStore, error) {
	s := &AccountStore{
		creators: make(map[string]models.Creator),
		fans:     make(map[string]models.Fan),
		path:     path,
		secret:   passphrase,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AccountStore) SaveCreator(creator models.Creator) error {
	if strings.TrimSpace(creator.Address) == "" {
		return ErrAddressRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creators[creator.ID]; ok {
		return ErrCreatorIDConflict
	}
	nextCreators := cloneCreatorsMap(s.creators)
	nextCreators[creator.ID] = creator
	if err := s.persistSnapshotLocked(nextCreators, s.fans); err != nil {
		return err
	}
	s.creators = nextCreators
	return nil
}

func (s *AccountStore) SaveFan(fan models.Fan) error {
	if strings.TrimSpace(fan.Address) == "" {
		return ErrAddressRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fans[fan.ID]; ok {
		return ErrFanIDConflict
	}
	nextFans := cloneFansMap(s.fans)
	nextFans[fan.ID] = fan
	if err := s.persistSnapshotLocked(s.creators, nextFans); err != nil {
		return err
	}
	s.fans = nextFans
	return nil
}

func (s *AccountStore) SetCreatorVerification(creatorID, state string) (models.Creator, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creator, ok := s.creators[creatorID]
	if !ok {
		return models.Creator{}, false, nil
	}
	creator.Verification = state
	nextCreators := cloneCreatorsMap(s.creators)
	nextCreators[creatorID] = creator
	if err := s.persistSnapshotLocked(nextCreators, s.fans); err != nil {
		return models.Creator{}, false, err
	}
	s.creators = nextCreators
	return creator, true, nil
}

func (s *AccountStore) GetCreator(id string) (models.Creator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creator, ok := s.creators[id]
	return creator, ok
}

func (s *AccountStore) GetFan(id string) (models.Fan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fan, ok := s.fans[id]
	return fan, ok
}

func (s *AccountStore) FindCreatorByAddress(address string) (models.Creator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, creator := range s.creators {
		if creator.Address == address {
			return creator, true
		}
	}
	return models.Creator{}, false
}

func (s *AccountStore) FindFanByAddress(address string) (models.Fan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fan := range s.fans {
		if fan.Address == address {
			return fan, true
		}
	}
	return models.Fan{}, false
}

func (s *AccountStore) load() error {
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
	var snapshot accountSnapshot
	if err := unmarshalStoreSnapshot(decoded, &snapshot); err != nil {
		return err
	}
	if snapshot.Creators != nil {
		s.creators = snapshot.Creators
	}
	if snapshot.Fans != nil {
		s.fans = snapshot.Fans
	}
	return nil
}

type accountSnapshot struct {
	Creators map[string]models.Creator `json:"creators"`
	Fans     map[string]models.Fan     `json:"fans"`
}

func (s *AccountStore) persistSnapshotLocked(creators map[string]models.Creator, fans map[string]models.Fan) error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return writeStoreSnapshot(s.path, s.secret, accountSnapshot{Creators: creators, Fans: fans})
}

func cloneCreatorsMap(in map[string]models.Creator) map[string]models.Creator {
	out := make(map[string]models.Creator, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneFansMap(in map[string]models.Fan) map[string]models.Fan {
	out := make(map[string]models.Fan, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// NewCreator builds an unverified creator record for a wallet address.
func NewCreator(id, address string) models.Creator {
	return models.Creator{
		ID:           id,
		Address:      address,
		Verification: models.VerificationPending,
		CreatedAt:    time.Now().UTC(),
	}
}

func NewFan(id, address string) models.Fan {
	return models.Fan{
		ID:        id,
		Address:   address,
		CreatedAt: time.Now().UTC(),
	}
}
