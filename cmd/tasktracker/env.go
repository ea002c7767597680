package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nhle/task-tracker/internal/api"
	"github.com/nhle/task-tracker/internal/credential"
	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/session"
	"github.com/nhle/task-tracker/internal/store"
	"github.com/nhle/task-tracker/internal/tasks"
)

// errNotLoggedIn is returned by commands that need a session.
var errNotLoggedIn = errors.New("not logged in: run `tasktracker login` first")

// env holds what a command run needs. Everything past the config is
// opened lazily so that `config` commands work without a keyring.
type env struct {
	configPath string
	cfg        *model.AppConfig
	jsonOut    bool

	client  *api.Client
	creds   credential.Provider
	session *session.Store
	tasks   *tasks.Store
	journal *store.SQLiteStore

	// openCreds replaces the system keyring in tests.
	openCreds func(model.CredentialConfig) (credential.Provider, error)
}

func (e *env) open() error {
	if e.session != nil {
		return nil
	}

	openCreds := e.openCreds
	if openCreds == nil {
		openCreds = func(cfg model.CredentialConfig) (credential.Provider, error) {
			return credential.Open(cfg)
		}
	}
	creds, err := openCreds(e.cfg.Credential)
	if err != nil {
		return err
	}

	e.creds = creds
	e.client = api.NewClient(e.cfg.API.BaseURL,
		api.WithTimeout(time.Duration(e.cfg.API.TimeoutSec)*time.Second))
	e.session = session.New(e.client, creds)
	e.tasks = tasks.New(e.client, creds)
	return nil
}

// requireSession restores the persisted session and fails when there is
// none or the server rejected it.
func (e *env) requireSession(ctx context.Context) (session.Snapshot, error) {
	if err := e.open(); err != nil {
		return session.Snapshot{}, err
	}
	e.session.Bootstrap(ctx)
	snap := e.session.State()
	if !snap.Authenticated() {
		return snap, errNotLoggedIn
	}
	return snap, nil
}

// Journal opens the local tracking journal, creating its directory.
func (e *env) Journal() (*store.SQLiteStore, error) {
	if e.journal != nil {
		return e.journal, nil
	}

	path := e.cfg.Journal.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	e.journal = s
	return s, nil
}

// Close releases the journal if it was opened.
func (e *env) Close() error {
	if e.journal == nil {
		return nil
	}
	err := e.journal.Close()
	e.journal = nil
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
