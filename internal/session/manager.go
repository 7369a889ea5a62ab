// Package session owns authentication state. All transitions between
// anonymous, authenticating, authenticated and invalid go through the
// Manager's operations; everyone else only reads snapshots.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nfrund/voyage/internal/credstore"
	"github.com/nfrund/voyage/internal/domain"
	"github.com/nfrund/voyage/internal/pubsub"
)

// State is the session's authentication state.
type State string

const (
	// StateAnonymous means no credential is held.
	StateAnonymous State = "anonymous"
	// StateAuthenticating means a credential exists but the profile has
	// not been resolved yet.
	StateAuthenticating State = "authenticating"
	// StateAuthenticated means the credential was accepted and a profile
	// is loaded.
	StateAuthenticated State = "authenticated"
	// StateInvalid means the stored credential could not be confirmed
	// (e.g. the server was unreachable during profile resolution).
	StateInvalid State = "invalid"
)

// Snapshot is a read-only view of the session. Profile is non-nil iff the
// state is authenticated.
type Snapshot struct {
	State   State
	Profile *domain.UserProfile
}

// Authority is the slice of the remote API the session manager needs.
// *gateway.Client satisfies it.
type Authority interface {
	Login(ctx context.Context, in domain.LoginInput) (string, domain.UserProfile, error)
	Register(ctx context.Context, in domain.RegisterInput) (string, domain.UserProfile, error)
	CurrentUser(ctx context.Context) (domain.UserProfile, error)
}

// Listener observes session transitions. Listeners are invoked synchronously
// after every transition, outside the manager's lock.
type Listener func(Snapshot)

// Manager drives login, registration, logout and profile resolution.
type Manager struct {
	mu        sync.Mutex
	state     State
	profile   *domain.UserProfile
	creds     credstore.Store
	authority Authority
	pub       pubsub.Publisher
	listeners []Listener
}

// NewManager derives the initial state from the credential store: a stored
// credential starts the session in authenticating, pending ResolveProfile;
// otherwise the session starts anonymous.
func NewManager(creds credstore.Store, authority Authority, pub pubsub.Publisher) *Manager {
	m := &Manager{
		state:     StateAnonymous,
		creds:     creds,
		authority: authority,
		pub:       pub,
	}

	token, err := creds.Token()
	if err != nil {
		slog.Warn("Could not read stored credential at startup", "error", err)
		m.state = StateInvalid
		return m
	}
	if token != "" {
		m.state = StateAuthenticating
	}
	return m
}

// OnChange registers a listener for session transitions. Registration is not
// retroactive; callers needing the current state should read Snapshot first.
func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Snapshot returns the current state and, when authenticated, a copy of the
// profile.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state}
	if m.profile != nil {
		profile := *m.profile
		snap.Profile = &profile
	}
	return snap
}

// transition applies the new state under the lock, then notifies listeners
// and publishes the change event outside it.
func (m *Manager) transition(ctx context.Context, state State, profile *domain.UserProfile) {
	m.mu.Lock()
	m.state = state
	m.profile = profile
	snap := m.snapshotLocked()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}

	if m.pub != nil {
		payload := Changed{State: state}
		if profile != nil {
			payload.Username = profile.Username
		}
		if err := pubsub.Publish(ctx, m.pub, ChangedEvent, payload); err != nil {
			slog.Error("Failed to publish session change", "state", state, "error", err)
		}
	}
}

// Login authenticates with email and password. On success the returned
// credential is stored and the session becomes authenticated. Every failure
// is returned as a classified *domain.Fault; the session ends up anonymous.
func (m *Manager) Login(ctx context.Context, in domain.LoginInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	m.transition(ctx, StateAuthenticating, nil)

	token, profile, err := m.authority.Login(ctx, in)
	if err != nil {
		slog.Warn("Failed login attempt", "email", in.Email, "kind", domain.KindOf(err))
		m.transition(ctx, StateAnonymous, nil)
		if domain.IsAuthFault(err) {
			// A rejected login is a business failure to the caller,
			// not an expired session.
			return domain.NewFault(domain.FaultConflict, "Invalid email or password.")
		}
		return err
	}

	if err := m.creds.Save(token); err != nil {
		slog.Error("Could not persist credential", "error", err)
		m.transition(ctx, StateAnonymous, nil)
		return domain.WrapFault(domain.FaultTransport, "Could not store the session credential.", err)
	}

	m.transition(ctx, StateAuthenticated, &profile)
	slog.Info("Signed in", "username", profile.Username)
	return nil
}

// Register creates an account. Input is validated locally first: a password
// mismatch or a short password never reaches the network.
func (m *Manager) Register(ctx context.Context, in domain.RegisterInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	m.transition(ctx, StateAuthenticating, nil)

	token, profile, err := m.authority.Register(ctx, in)
	if err != nil {
		slog.Warn("Failed registration attempt", "email", in.Email, "kind", domain.KindOf(err))
		m.transition(ctx, StateAnonymous, nil)
		return err
	}

	if err := m.creds.Save(token); err != nil {
		slog.Error("Could not persist credential", "error", err)
		m.transition(ctx, StateAnonymous, nil)
		return domain.WrapFault(domain.FaultTransport, "Could not store the session credential.", err)
	}

	m.transition(ctx, StateAuthenticated, &profile)
	slog.Info("Account created", "username", profile.Username)
	return nil
}

// ResolveProfile exchanges the stored credential for a profile. It is called
// at startup when a credential survived from a previous run. A stale or
// forged credential is cleared so the session can never stay stuck in
// authenticating; an unreachable server parks the session in invalid with
// the credential retained for a later retry.
func (m *Manager) ResolveProfile(ctx context.Context) error {
	token, err := m.creds.Token()
	if err != nil {
		m.transition(ctx, StateInvalid, nil)
		return domain.WrapFault(domain.FaultTransport, "Could not read the stored credential.", err)
	}
	if token == "" {
		m.transition(ctx, StateAnonymous, nil)
		return nil
	}

	profile, err := m.authority.CurrentUser(ctx)
	if err != nil {
		if domain.IsAuthFault(err) {
			slog.Info("Stored credential rejected, clearing it")
			if clearErr := m.creds.Clear(); clearErr != nil {
				slog.Error("Could not clear rejected credential", "error", clearErr)
			}
			m.transition(ctx, StateAnonymous, nil)
			return err
		}
		m.transition(ctx, StateInvalid, nil)
		return err
	}

	m.transition(ctx, StateAuthenticated, &profile)
	return nil
}

// Logout clears the credential and returns the session to anonymous. It
// never fails; a credential file that cannot be removed is logged and the
// in-memory session is cleared regardless.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.creds.Clear(); err != nil {
		slog.Error("Could not clear credential on logout", "error", err)
	}
	m.transition(ctx, StateAnonymous, nil)
	slog.Info("Signed out")
}

// SyncFromStore re-derives the session after the credential file changed on
// disk, e.g. another process of this CLI logged in or out.
func (m *Manager) SyncFromStore(ctx context.Context) error {
	token, err := m.creds.Token()
	if err != nil {
		m.transition(ctx, StateInvalid, nil)
		return domain.WrapFault(domain.FaultTransport, "Could not read the stored credential.", err)
	}

	if token == "" {
		m.mu.Lock()
		anonymous := m.state == StateAnonymous
		m.mu.Unlock()
		if !anonymous {
			m.transition(ctx, StateAnonymous, nil)
		}
		return nil
	}

	m.transition(ctx, StateAuthenticating, nil)
	return m.ResolveProfile(ctx)
}
