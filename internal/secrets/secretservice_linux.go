//go:build linux

package secrets

import (
	"github.com/zalando/go-keyring"
)

// SecretServiceBackend provides Linux Secret Service storage (GNOME Keyring, KWallet)
type SecretServiceBackend struct {
	service string
}

// NewSecretServiceBackend creates a new Linux Secret Service backend
func NewSecretServiceBackend() (Backend, error) {
	return &SecretServiceBackend{
		service: "ushell",
	}, nil
}

// Set stores a secret in the secret service
func (s *SecretServiceBackend) Set(key, value string) error {
	return keyring.Set(s.service, key, value)
}

// Get retrieves a secret from the secret service
func (s *SecretServiceBackend) Get(key string) (string, error) {
	value, err := keyring.Get(s.service, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrSecretNotFound
		}
		return "", err
	}
	return value, nil
}

// Delete removes a secret from the secret service
func (s *SecretServiceBackend) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && err != keyring.ErrNotFound {
		return err
	}
	return nil
}

// Exists checks if a secret exists in the secret service
func (s *SecretServiceBackend) Exists(key string) (bool, error) {
	_, err := keyring.Get(s.service, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List always returns an empty list: go-keyring offers no way to
// enumerate the keys stored for a service, and this backend keeps no
// index of its own.
func (s *SecretServiceBackend) List() ([]string, error) {
	return []string{}, nil
}

