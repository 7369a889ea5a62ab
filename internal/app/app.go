// Package app wires the core services together. This is the single place
// that knows how the credential store, gateway, session manager and
// destination cache depend on each other.
package app

import (
	"context"
	"log/slog"

	"github.com/nfrund/voyage/internal/config"
	"github.com/nfrund/voyage/internal/credstore"
	"github.com/nfrund/voyage/internal/gateway"
	"github.com/nfrund/voyage/internal/planner"
	"github.com/nfrund/voyage/internal/pubsub"
	"github.com/nfrund/voyage/internal/session"
)

// App holds the fully wired application services.
type App struct {
	Config       *config.Config
	Creds        *credstore.FileStore
	Gateway      *gateway.Client
	Bus          *pubsub.WatermillBridge
	Session      *session.Manager
	Destinations *planner.Cache
}

// New builds the application from configuration. The cache is subscribed to
// session transitions so it clears itself whenever the session leaves the
// authenticated state.
func New(cfg *config.Config) *App {
	bus := pubsub.NewWatermillBridge()
	creds := credstore.NewOsFileStore(cfg.TokenPath)

	gw := gateway.New(gateway.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.HTTPTimeout,
		Credentials: creds,
	})

	sess := session.NewManager(creds, gw, bus)
	cache := planner.NewCache(gw, sess, bus)
	sess.OnChange(cache.HandleSessionChange)

	return &App{
		Config:       cfg,
		Creds:        creds,
		Gateway:      gw,
		Bus:          bus,
		Session:      sess,
		Destinations: cache,
	}
}

// Start resolves a credential left over from a previous run and, when
// configured, begins watching the credential file for external changes. A
// failed resolution is not fatal: the session is parked in anonymous or
// invalid and the caller decides what to do with it.
func (a *App) Start(ctx context.Context) {
	if a.Session.Snapshot().State == session.StateAuthenticating {
		if err := a.Session.ResolveProfile(ctx); err != nil {
			slog.Warn("Could not resolve stored credential", "error", err)
		}
	}

	if a.Config.WatchCredentials {
		if err := a.watchCredentials(ctx); err != nil {
			slog.Error("Could not watch the credential file", "path", a.Config.TokenPath, "error", err)
		}
	}
}

// watchCredentials re-derives the session whenever the token file changes on
// disk, so a long-running process notices logins and logouts performed by
// other invocations of this CLI.
func (a *App) watchCredentials(ctx context.Context) error {
	changes, err := credstore.Watch(ctx, a.Config.TokenPath)
	if err != nil {
		return err
	}

	go func() {
		for range changes {
			slog.Debug("Credential file changed, re-deriving session")
			if err := a.Session.SyncFromStore(ctx); err != nil {
				slog.Warn("Could not sync session from store", "error", err)
			}
		}
	}()
	return nil
}

// Close releases the event bus. It must be called once all subscribers are
// done.
func (a *App) Close() error {
	return a.Bus.Close()
}
