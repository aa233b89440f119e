package storage

import (
	"encoding/json"
	"os"

	"fave/go-backend/internal/securestore"
)

func unmarshalStoreSnapshot(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func writeStoreSnapshot(path, secret string, v any) error {
	if secret != "" {
		return securestore.WriteEncryptedJSON(path, secret, v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
