// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for tixload.
// It keeps the secrets the config file must not hold: the seat-map API key used
// for hold-token requests and the DSN of the optional results database.
//
// The package supports macOS Keychain, Windows Credential Manager and the Linux
// Secret Service through github.com/99designs/keyring.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ErrNotFound is returned when a secret has never been stored.
var ErrNotFound = errors.New("secret not found in keychain")

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "tixload"

// Keys used for storing secrets in the OS keychain.
const (
	KeySeatsIOKey = "seats_io_key"
	KeyResultsDSN = "results_dsn"
)

// Manager provides thread-safe operations over a keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring (tests pass an array keyring).
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
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
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only; there is
// no encrypted-file fallback.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
		WinCredPrefix:   ServiceName,
	}
	return keyring.Open(cfg)
}

func (m *Manager) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

func (m *Manager) remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// SaveSeatsIOKey stores the seat-map API key.
func (m *Manager) SaveSeatsIOKey(key string) error { return m.set(KeySeatsIOKey, key) }

// LoadSeatsIOKey returns the stored seat-map API key or ErrNotFound.
func (m *Manager) LoadSeatsIOKey() (string, error) { return m.get(KeySeatsIOKey) }

// SaveResultsDSN stores the results database DSN.
func (m *Manager) SaveResultsDSN(dsn string) error { return m.set(KeyResultsDSN, dsn) }

// LoadResultsDSN returns the stored results DSN or ErrNotFound.
func (m *Manager) LoadResultsDSN() (string, error) { return m.get(KeyResultsDSN) }

// ClearAll removes every tixload secret. Missing entries are not an error.
func (m *Manager) ClearAll() error {
	return errors.Join(m.remove(KeySeatsIOKey), m.remove(KeyResultsDSN))
}
