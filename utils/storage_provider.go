package utils

import (
	"strings"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

// NormalizeStorageProvider maps an empty STORAGE_PROVIDER to local-only storage.
func NormalizeStorageProvider(provider string) string {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider == "" {
		return StorageProviderLocal
	}
	return provider
}
