// Copyright (c) 2025 Sqlbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain keeps the saved database connection in the OS credential store.
//
// The stored value is the normalized connection URL, password included, so a
// later command can reconnect without prompting. macOS uses the security
// command first and falls back to the Keychain/pass backends of
// github.com/99designs/keyring; Windows uses the Credential Manager and Linux
// uses Secret Service, KWallet or pass.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	apperr "sqlbench/cli/internal/errors"
	"sqlbench/cli/internal/logging"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
	logger        = logging.Discard()
)

// ErrNotFound is returned when nothing is stored under a key.
var ErrNotFound = errors.New("key not found")

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlbench"

// KeyConnection holds the normalized DSN of the saved connection.
const KeyConnection = "connection_dsn"

// backend is the minimal store the manager needs.
type backend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe access to the saved connection.
type Manager struct {
	mu      sync.RWMutex
	backend backend
}

// SetLogger sets the logger used for keychain debug output.
func SetLogger(l *pterm.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l != nil {
		logger = l
	}
}

// NewManager opens the platform credential store.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		b, err := newSecurityBackend(logger)
		if err == nil {
			return &Manager{backend: b}, nil
		}
		logger.Debug("security command unavailable, using keyring", logger.Args("error", err.Error()))
	}

	ring, err := openRing()
	if err != nil {
		return nil, apperr.Wrap(apperr.KeychainUnavailable, "secure storage is not available on this system", err)
	}
	return NewWithKeyring(ring), nil
}

// NewWithKeyring builds a manager over an already opened keyring.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{backend: ringBackend{ring: ring}}
}

// GetManager returns the process wide manager, creating it on first use.
// A failed initialization is retried on the next call.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return m, nil
}

// openRing opens the OS keyring using native platform backends only; there
// is no encrypted file fallback.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// pass requires: brew install pass gnupg && pass init <gpg-key-id>
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
		LibSecretCollectionName: ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SaveConnection stores the normalized DSN of the verified connection.
func (m *Manager) SaveConnection(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Set(KeyConnection, dsn)
}

// LoadConnection returns the saved DSN, or ErrNotFound.
func (m *Manager) LoadConnection() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, err := m.backend.Get(KeyConnection)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// ClearConnection removes the saved DSN. Nothing saved is not an error.
func (m *Manager) ClearConnection() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.backend.Delete(KeyConnection); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// ringBackend adapts a keyring.Keyring to the backend interface.
type ringBackend struct {
	ring keyring.Keyring
}

func (r ringBackend) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (r ringBackend) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringBackend) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}
