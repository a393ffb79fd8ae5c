// Package app wires the per-identity runtime: document store strategy,
// editor session, ghost coordinator, assistant, and settings. It replaces
// ambient singletons with an explicitly-owned context per identity.
package app

import (
	"context"
	"log/slog"
	"sync"

	"inkflow/internal/assistant"
	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
	"inkflow/internal/domain/repositories"
	"inkflow/internal/editor"
	"inkflow/internal/ghost"
	"inkflow/internal/repository/localstore"
	"inkflow/internal/store"
	"inkflow/internal/suggest"
)

// RemoteBackend bundles the authenticated-mode repositories. Nil means the
// server runs guest-only (no database configured).
type RemoteBackend struct {
	Documents repositories.DocumentRepository
	Folders   repositories.FolderRepository
	Versions  repositories.VersionRepository
	Settings  repositories.SettingsRepository
	Tx        repositories.TransactionManager
}

// Controller owns one workspace per identity, building each lazily on first
// use. The guest workspace is shared; signing out of an account simply means
// requests arrive with the guest identity again and land on it.
type Controller struct {
	suggest  *suggest.Service
	local    *localstore.Store
	remote   *RemoteBackend
	ghostCfg ghost.Config
	logger   *slog.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewController creates the controller. remote may be nil for a guest-only
// deployment.
func NewController(suggestSvc *suggest.Service, local *localstore.Store, remote *RemoteBackend, ghostCfg ghost.Config, logger *slog.Logger) *Controller {
	return &Controller{
		suggest:    suggestSvc,
		local:      local,
		remote:     remote,
		ghostCfg:   ghostCfg,
		logger:     logger,
		workspaces: make(map[string]*Workspace),
	}
}

// Workspace returns the identity's workspace, creating it on first use.
func (c *Controller) Workspace(ctx context.Context, identity models.Identity) (*Workspace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ws, ok := c.workspaces[identity.UserID]; ok {
		return ws, nil
	}

	ws, err := c.buildWorkspace(ctx, identity)
	if err != nil {
		return nil, err
	}
	c.workspaces[identity.UserID] = ws
	return ws, nil
}

// Close tears down every workspace.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ws := range c.workspaces {
		ws.Close()
		delete(c.workspaces, id)
	}
}

func (c *Controller) buildWorkspace(ctx context.Context, identity models.Identity) (*Workspace, error) {
	logger := c.logger.With("user_id", identity.UserID)

	var st *store.Store
	if identity.Guest {
		st = store.NewGuestStore(c.local, logger)
	} else {
		if c.remote == nil {
			return nil, &domain.UnsupportedError{Message: "accounts are not enabled on this server"}
		}
		remote, err := store.NewRemoteStore(ctx, identity, store.RemoteDeps{
			Documents: c.remote.Documents,
			Folders:   c.remote.Folders,
			Versions:  c.remote.Versions,
			Tx:        c.remote.Tx,
		}, logger)
		if err != nil {
			return nil, err
		}
		st = remote
	}

	session := editor.NewSession(st, logger)
	coordinator := ghost.NewCoordinator(c.suggest, session,
		func() string { return store.DeriveTitle(session.Content()) },
		c.ghostCfg, logger)
	session.SetListener(coordinator.ContentChanged)

	ws := &Workspace{
		identity:  identity,
		logger:    logger,
		Store:     st,
		Session:   session,
		Ghost:     coordinator,
		Assistant: assistant.New(c.suggest, logger),
		local:     c.local,
	}
	if !identity.Guest {
		ws.settingsRepo = c.remote.Settings
	}
	ws.unsubscribe = st.Subscribe(ws.handleStorePush)

	// Open the most recent document, or start a fresh draft.
	docs := st.List(ctx)
	if len(docs) == 0 {
		if _, err := ws.CreateDocument(ctx, nil); err != nil {
			ws.Close()
			return nil, err
		}
	} else if _, err := ws.SelectDocument(ctx, docs[0].ID); err != nil {
		ws.Close()
		return nil, err
	}

	return ws, nil
}
