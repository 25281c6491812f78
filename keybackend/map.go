// Package keybackend provides s3component.SecretStore implementations used
// to verify signed request descriptors.
package keybackend

import (
	"fmt"

	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// MapSecretStore retrieves keys from an in-memory map.
// The map is never mutated after construction.
type MapSecretStore struct {
	keys map[string]string
}

var _ s3component.SecretStore = (*MapSecretStore)(nil)

// NewMapSecretStore creates a store from an access key to secret key mapping.
// The map is copied.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	copied := make(map[string]string, len(keys))
	for k, v := range keys {
		copied[k] = v
	}
	return &MapSecretStore{keys: copied}
}

// Lookup retrieves the secret key for accessKey. Unknown keys yield an error
// matching both ErrKeyNotFound and s3component.ErrUnauthorized.
func (s *MapSecretStore) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("%w: %w", ErrKeyNotFound, s3component.ErrUnauthorized)
	}
	return secretKey, nil
}

// Len returns the number of known access keys.
func (s *MapSecretStore) Len() int {
	return len(s.keys)
}
