package daemon

import (
	"path/filepath"

	"fave/go-backend/internal/storage"
)

type StorageBundle struct {
	AccountStore *storage.AccountStore
	ListingStore *storage.ListingStore
}

func BuildStorageBundle(dataDir, secret string) (StorageBundle, error) {
	accountsPath := filepath.Join(dataDir, "accounts.json")
	listingsPath := filepath.Join(dataDir, "listings.json")

	accountStore, err := storage.NewPersistentAccountStore(accountsPath, secret)
	if err != nil {
		return StorageBundle{}, err
	}
	listingStore, err := storage.NewPersistentListingStore(listingsPath, secret)
	if err != nil {
		return StorageBundle{}, err
	}

	return StorageBundle{
		AccountStore: accountStore,
		ListingStore: listingStore,
	}, nil
}
