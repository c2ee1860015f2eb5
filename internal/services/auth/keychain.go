package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrEmptyToken is returned when storing a blank secret.
var ErrEmptyToken = errors.New("auth token is empty")

// KeychainStore keeps secrets in the OS keychain under one service name.
// Each keychain key (for example "porkbun-apikey") is a separate account.
type KeychainStore struct {
	service string
}

// NewKeychainStore returns a store for service, defaulting to ServiceName.
func NewKeychainStore(service string) *KeychainStore {
	if service == "" {
		service = ServiceName
	}
	return &KeychainStore{service: service}
}

func (k *KeychainStore) account(key string) (string, error) {
	account := NormalizeProvider(key)
	if account == "" {
		return "", fmt.Errorf("keychain key is required")
	}
	return account, nil
}

// SetToken stores token under key. Surrounding whitespace from pasted
// secrets is dropped.
func (k *KeychainStore) SetToken(key string, token string) error {
	account, err := k.account(key)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: %s", ErrEmptyToken, account)
	}
	if err := keyring.Set(k.service, account, token); err != nil {
		return fmt.Errorf("saving %s to keychain: %w", account, err)
	}
	return nil
}

// GetToken returns the secret for key, or ErrTokenNotFound.
func (k *KeychainStore) GetToken(key string) (string, error) {
	account, err := k.account(key)
	if err != nil {
		return "", err
	}
	token, err := keyring.Get(k.service, account)
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrTokenNotFound
	case err != nil:
		return "", fmt.Errorf("reading %s from keychain: %w", account, err)
	}
	return token, nil
}

// DeleteToken removes the secret for key, or returns ErrTokenNotFound.
func (k *KeychainStore) DeleteToken(key string) error {
	account, err := k.account(key)
	if err != nil {
		return err
	}
	err = keyring.Delete(k.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrTokenNotFound
	}
	return err
}
