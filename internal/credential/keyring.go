package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/task-tracker/internal/model"
)

const serviceName = "tasktracker"

// TokenKey is the single well-known slot holding the bearer token.
const TokenKey = "access-token"

// ErrNotFound is returned by Get when no token is persisted.
var ErrNotFound = errors.New("credential not found")

// TokenReader reads the persisted bearer token.
type TokenReader interface {
	Get() (string, error)
}

// Provider is the persisted bearer-token slot. Only the session layer
// writes it; everything else reads through TokenReader.
type Provider interface {
	TokenReader
	Set(token string) error
	Clear() error
}

// backendsByName maps config names to keyring backends.
var backendsByName = map[string]keyring.BackendType{
	"keychain":       keyring.KeychainBackend,
	"secret-service": keyring.SecretServiceBackend,
	"wincred":        keyring.WinCredBackend,
	"pass":           keyring.PassBackend,
	"file":           keyring.FileBackend,
}

// OpenKeyring returns a configured keyring instance. An empty backend lets
// the keyring pick the first available system backend, falling back to the
// encrypted file store.
func OpenKeyring(cfg model.CredentialConfig) (keyring.Keyring, error) {
	allowed := []keyring.BackendType{
		keyring.KeychainBackend,
		keyring.SecretServiceBackend,
		keyring.WinCredBackend,
		keyring.PassBackend,
		keyring.FileBackend,
	}
	if cfg.Backend != "" {
		b, ok := backendsByName[cfg.Backend]
		if !ok {
			return nil, fmt.Errorf("unknown credential backend %q", cfg.Backend)
		}
		allowed = []keyring.BackendType{b}
	}

	fileDir := cfg.FileDir
	if fileDir == "" {
		fileDir = model.DefaultCredentialDir()
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          allowed,
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("tasktracker-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringProvider persists the bearer token in a keyring.
type KeyringProvider struct {
	ring keyring.Keyring
	key  string
}

// NewKeyringProvider wraps ring. Tests pass keyring.NewArrayKeyring(nil).
func NewKeyringProvider(ring keyring.Keyring) *KeyringProvider {
	return &KeyringProvider{ring: ring, key: TokenKey}
}

// Open opens the system keyring described by cfg and wraps it.
func Open(cfg model.CredentialConfig) (*KeyringProvider, error) {
	ring, err := OpenKeyring(cfg)
	if err != nil {
		return nil, err
	}
	return NewKeyringProvider(ring), nil
}

// Get retrieves the persisted token. It returns ErrNotFound when the slot
// is empty.
func (p *KeyringProvider) Get() (string, error) {
	item, err := p.ring.Get(p.key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", p.key, err)
	}
	if len(item.Data) == 0 {
		return "", ErrNotFound
	}

	return string(item.Data), nil
}

// Set stores the token.
func (p *KeyringProvider) Set(token string) error {
	err := p.ring.Set(keyring.Item{
		Key:   p.key,
		Data:  []byte(token),
		Label: "task tracker access token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", p.key, err)
	}

	return nil
}

// Clear removes the token. Clearing an empty slot is not an error.
func (p *KeyringProvider) Clear() error {
	err := p.ring.Remove(p.key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", p.key, err)
	}

	return nil
}

// Token returns the persisted token, or "" when none is stored or the
// keyring cannot be read.
func Token(r TokenReader) string {
	tok, err := r.Get()
	if err != nil {
		return ""
	}
	return tok
}
