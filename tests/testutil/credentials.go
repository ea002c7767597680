package testutil

import (
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/task-tracker/internal/credential"
)

// NewCredentials returns an in-memory credential provider. A non-empty token
// is stored before it is returned.
func NewCredentials(t *testing.T, token string) *credential.KeyringProvider {
	t.Helper()

	p := credential.NewKeyringProvider(keyring.NewArrayKeyring(nil))
	if token != "" {
		if err := p.Set(token); err != nil {
			t.Fatalf("seeding credentials: %v", err)
		}
	}
	return p
}
