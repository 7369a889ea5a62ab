package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/voyage/internal/credstore"
	"github.com/nfrund/voyage/internal/domain"
	"github.com/nfrund/voyage/internal/gateway"
	"github.com/nfrund/voyage/internal/session"
	"github.com/nfrund/voyage/internal/testutils"
)

type fixture struct {
	srv     *testutils.APIServer
	creds   credstore.Store
	manager *session.Manager
}

func newFixture(t *testing.T, storedToken string) *fixture {
	t.Helper()

	srv := testutils.NewAPIServer(t)
	creds := credstore.NewFileStore(afero.NewMemMapFs(), "/voyage/token")
	if storedToken != "" {
		require.NoError(t, creds.Save(storedToken))
	}

	client := gateway.New(gateway.Config{
		BaseURL:     srv.URL(),
		Timeout:     5 * time.Second,
		Credentials: creds,
	})

	return &fixture{
		srv:     srv,
		creds:   creds,
		manager: session.NewManager(creds, client, nil),
	}
}

func TestInitialState(t *testing.T) {
	t.Run("anonymous without a stored credential", func(t *testing.T) {
		f := newFixture(t, "")
		assert.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	})

	t.Run("authenticating with a stored credential", func(t *testing.T) {
		f := newFixture(t, "some-previous-token")
		snap := f.manager.Snapshot()
		assert.Equal(t, session.StateAuthenticating, snap.State)
		assert.Nil(t, snap.Profile, "no profile until the credential is confirmed")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores the credential and loads the profile", func(t *testing.T) {
		f := newFixture(t, "")
		f.srv.MustRegister(t, "wanderer", "a@b.com", "secret1")

		require.NoError(t, f.manager.Login(ctx, domain.LoginInput{Email: "a@b.com", Password: "secret1"}))

		snap := f.manager.Snapshot()
		assert.Equal(t, session.StateAuthenticated, snap.State)
		require.NotNil(t, snap.Profile)
		assert.Equal(t, "wanderer", snap.Profile.Username)

		token, err := f.creds.Token()
		require.NoError(t, err)
		assert.NotEmpty(t, token, "credential must survive for the next run")
	})

	t.Run("wrong password surfaces as a domain rejection, not an expired session", func(t *testing.T) {
		f := newFixture(t, "")
		f.srv.MustRegister(t, "wanderer", "a@b.com", "secret1")

		err := f.manager.Login(ctx, domain.LoginInput{Email: "a@b.com", Password: "wrong"})
		require.Error(t, err)
		assert.Equal(t, domain.FaultConflict, domain.KindOf(err))
		assert.Equal(t, "Invalid email or password.", domain.FaultMessage(err))
		assert.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	})

	t.Run("malformed email never reaches the network", func(t *testing.T) {
		f := newFixture(t, "")

		err := f.manager.Login(ctx, domain.LoginInput{Email: "not-an-email", Password: "secret1"})
		require.Error(t, err)
		assert.Equal(t, domain.FaultValidation, domain.KindOf(err))
		assert.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	})

	t.Run("transitions pass through authenticating", func(t *testing.T) {
		f := newFixture(t, "")
		f.srv.MustRegister(t, "wanderer", "a@b.com", "secret1")

		var states []session.State
		f.manager.OnChange(func(s session.Snapshot) {
			states = append(states, s.State)
		})

		require.NoError(t, f.manager.Login(ctx, domain.LoginInput{Email: "a@b.com", Password: "secret1"}))
		assert.Equal(t, []session.State{session.StateAuthenticating, session.StateAuthenticated}, states)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account and signs it in", func(t *testing.T) {
		f := newFixture(t, "")

		err := f.manager.Register(ctx, domain.RegisterInput{
			Username:        "wanderer",
			Email:           "a@b.com",
			Password:        "secret1",
			ConfirmPassword: "secret1",
		})
		require.NoError(t, err)

		snap := f.manager.Snapshot()
		assert.Equal(t, session.StateAuthenticated, snap.State)
		require.NotNil(t, snap.Profile)
		assert.Equal(t, "wanderer", snap.Profile.Username)
	})

	t.Run("password mismatch is rejected locally", func(t *testing.T) {
		f := newFixture(t, "")

		err := f.manager.Register(ctx, domain.RegisterInput{
			Username:        "wanderer",
			Email:           "a@b.com",
			Password:        "secret1",
			ConfirmPassword: "different",
		})
		require.Error(t, err)
		assert.Equal(t, domain.FaultValidation, domain.KindOf(err))
		assert.Equal(t, "Passwords do not match.", domain.FaultMessage(err))

		// The account must not exist: logging in with it fails.
		loginErr := f.manager.Login(ctx, domain.LoginInput{Email: "a@b.com", Password: "secret1"})
		require.Error(t, loginErr)
	})

	t.Run("short password is rejected locally", func(t *testing.T) {
		f := newFixture(t, "")

		err := f.manager.Register(ctx, domain.RegisterInput{
			Username:        "wanderer",
			Email:           "a@b.com",
			Password:        "abc",
			ConfirmPassword: "abc",
		})
		require.Error(t, err)
		assert.Equal(t, domain.FaultValidation, domain.KindOf(err))
	})

	t.Run("duplicate account surfaces the server message", func(t *testing.T) {
		f := newFixture(t, "")
		f.srv.MustRegister(t, "wanderer", "a@b.com", "secret1")

		err := f.manager.Register(ctx, domain.RegisterInput{
			Username:        "other",
			Email:           "a@b.com",
			Password:        "secret1",
			ConfirmPassword: "secret1",
		})
		require.Error(t, err)
		assert.Equal(t, domain.FaultConflict, domain.KindOf(err))
		assert.Equal(t, "User already exists", domain.FaultMessage(err))
		assert.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	})
}

func TestResolveProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("a valid stored credential becomes an authenticated session", func(t *testing.T) {
		srv := testutils.NewAPIServer(t)
		token := srv.MustRegister(t, "wanderer", "a@b.com", "secret1")
		f := newFixtureWithServer(t, srv, token)

		require.Equal(t, session.StateAuthenticating, f.manager.Snapshot().State)
		require.NoError(t, f.manager.ResolveProfile(ctx))

		snap := f.manager.Snapshot()
		assert.Equal(t, session.StateAuthenticated, snap.State)
		require.NotNil(t, snap.Profile)
		assert.Equal(t, "wanderer", snap.Profile.Username)
	})

	t.Run("a rejected credential is cleared and the session goes anonymous", func(t *testing.T) {
		srv := testutils.NewAPIServer(t)
		token := srv.MustRegister(t, "wanderer", "a@b.com", "secret1")
		f := newFixtureWithServer(t, srv, token)
		srv.RevokeToken(token)

		err := f.manager.ResolveProfile(ctx)
		require.Error(t, err)
		assert.True(t, domain.IsAuthFault(err))
		assert.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)

		stored, readErr := f.creds.Token()
		require.NoError(t, readErr)
		assert.Empty(t, stored, "a rejected credential must not be retried forever")
	})

	t.Run("an unreachable server parks the session in invalid and keeps the credential", func(t *testing.T) {
		srv := testutils.NewAPIServer(t)
		token := srv.MustRegister(t, "wanderer", "a@b.com", "secret1")
		f := newFixtureWithServer(t, srv, token)
		srv.FailNext("user", 1)

		err := f.manager.ResolveProfile(ctx)
		require.Error(t, err)
		assert.Equal(t, domain.FaultTransport, domain.KindOf(err))
		assert.Equal(t, session.StateInvalid, f.manager.Snapshot().State)

		stored, readErr := f.creds.Token()
		require.NoError(t, readErr)
		assert.Equal(t, token, stored, "credential is retained for a later retry")

		// The next attempt succeeds once the server recovers.
		require.NoError(t, f.manager.ResolveProfile(ctx))
		assert.Equal(t, session.StateAuthenticated, f.manager.Snapshot().State)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	f.srv.MustRegister(t, "wanderer", "a@b.com", "secret1")
	require.NoError(t, f.manager.Login(ctx, domain.LoginInput{Email: "a@b.com", Password: "secret1"}))

	f.manager.Logout(ctx)

	snap := f.manager.Snapshot()
	assert.Equal(t, session.StateAnonymous, snap.State)
	assert.Nil(t, snap.Profile)

	token, err := f.creds.Token()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Logging out twice is harmless.
	f.manager.Logout(ctx)
	assert.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
}

func TestSyncFromStore(t *testing.T) {
	ctx := context.Background()

	t.Run("picks up a credential written by another process", func(t *testing.T) {
		f := newFixture(t, "")
		token := f.srv.MustRegister(t, "wanderer", "a@b.com", "secret1")

		require.NoError(t, f.creds.Save(token))
		require.NoError(t, f.manager.SyncFromStore(ctx))

		assert.Equal(t, session.StateAuthenticated, f.manager.Snapshot().State)
	})

	t.Run("an externally cleared credential signs the session out", func(t *testing.T) {
		f := newFixture(t, "")
		f.srv.MustRegister(t, "wanderer", "a@b.com", "secret1")
		require.NoError(t, f.manager.Login(ctx, domain.LoginInput{Email: "a@b.com", Password: "secret1"}))

		require.NoError(t, f.creds.Clear())
		require.NoError(t, f.manager.SyncFromStore(ctx))

		assert.Equal(t, session.StateAnonymous, f.manager.Snapshot().State)
	})
}

func newFixtureWithServer(t *testing.T, srv *testutils.APIServer, storedToken string) *fixture {
	t.Helper()

	creds := credstore.NewFileStore(afero.NewMemMapFs(), "/voyage/token")
	if storedToken != "" {
		require.NoError(t, creds.Save(storedToken))
	}

	client := gateway.New(gateway.Config{
		BaseURL:     srv.URL(),
		Timeout:     5 * time.Second,
		Credentials: creds,
	})

	return &fixture{
		srv:     srv,
		creds:   creds,
		manager: session.NewManager(creds, client, nil),
	}
}
