package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

var testSeed = []domain.Identity{
	{Username: "admin", Secret: "admin123", DisplayName: "Administrator", Email: "admin@example.com", Roles: []string{"Admin", "User"}},
	{Username: "user", Secret: "user123", DisplayName: "Regular User", Email: "user@example.com", Roles: []string{"User"}},
	{Username: "manager", Secret: "manager123", DisplayName: "Manager", Roles: []string{"Manager", "User"}},
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

// newClock starts at the current second so tokens stored in backends that
// keep their own wall clock are not already expired.
func newClock() *clock {
	return &clock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc     *TokenService
	clock   *clock
	refresh store.RefreshTokens
}

func newFixture(t *testing.T, refresh store.RefreshTokens) *fixture {
	t.Helper()

	clk := newClock()
	if refresh == nil {
		mem := memory.NewRefreshTokenStore(memory.WithClock(clk.Now), memory.WithSweepInterval(0))
		t.Cleanup(func() { _ = mem.Close() })
		refresh = mem
	}

	creds, err := memory.NewCredentialStore(testSeed)
	require.NoError(t, err)

	deriver := &ClaimsDeriver{Now: clk.Now}
	validator, err := NewCredentialValidator(creds, cryptox.PlainComparer{}, deriver)
	require.NoError(t, err)

	issuer, err := jwtx.NewIssuer(jwtx.IssuerOptions{
		Key:      testKey,
		Issuer:   "tokenauth-test",
		Audience: "tokenauth-clients",
		Now:      clk.Now,
	})
	require.NoError(t, err)

	return &fixture{
		svc: &TokenService{
			Validator:     validator,
			Deriver:       deriver,
			Credentials:   creds,
			RefreshTokens: refresh,
			Issuer:        issuer,
			Verifier:      issuer.Verifier(),
			RefreshTTL:    jwtx.DefaultRefreshTokenTTL,
			Now:           clk.Now,
		},
		clock:   clk,
		refresh: refresh,
	}
}

func TestLogin_AdminScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	pair, err := f.svc.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, domain.TokenTypeBearer, pair.TokenType)
	require.Equal(t, 900, int(pair.ExpiresIn/time.Second))

	require.NotNil(t, pair.User)
	require.Equal(t, "admin", pair.User.Username)
	require.Equal(t, "Administrator", pair.User.DisplayName)
	require.Contains(t, pair.User.Roles, "Admin")
	require.Contains(t, pair.User.Roles, "User")
}

func TestLogin_EveryIdentity(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, id := range testSeed {
		t.Run(id.Username, func(t *testing.T) {
			_, err := f.svc.Login(ctx, id.Username, id.Secret)
			require.NoError(t, err)

			_, wrong := f.svc.Login(ctx, id.Username, id.Secret+"x")
			require.ErrorIs(t, wrong, ErrInvalidCredentials)

			_, unknown := f.svc.Login(ctx, "nobody-"+id.Username, id.Secret)
			require.ErrorIs(t, unknown, ErrInvalidCredentials)
			require.Equal(t, wrong, unknown)
		})
	}
}

func TestLogin_Rejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		secret     string
		want       error
	}{
		{"wrong password", "admin", "wrongpass", ErrInvalidCredentials},
		{"unknown user", "ghost", "admin123", ErrInvalidCredentials},
		{"blank identifier", "", "admin123", ErrInvalidRequest},
		{"blank secret", "admin", "  ", ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := f.svc.Login(ctx, tt.identifier, tt.secret)
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, pair)
		})
	}
}

func TestLogin_IdentifierIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	pair, err := f.svc.Login(context.Background(), "ADMIN", "admin123")
	require.NoError(t, err)
	require.Equal(t, "admin", pair.User.Username)
}

func TestLogin_CanceledContextStoresNothing(t *testing.T) {
	t.Parallel()
	mem := memory.NewRefreshTokenStore(memory.WithSweepInterval(0))
	f := newFixture(t, mem)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Login(ctx, "admin", "admin123")
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, mem.Len())
}

func TestAuthenticate_ValidUntilTTLPlusSkew(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, "user", "user123")
	require.NoError(t, err)

	f.clock.Advance(jwtx.DefaultAccessTokenTTL + 59*time.Second)
	set, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user", set.Subject())

	f.clock.Advance(2 * time.Second)
	_, err = f.svc.Authenticate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, jwtx.ErrExpired)
	require.ErrorContains(t, err, "expired")
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	id, err := f.svc.Credentials.Lookup(ctx, "manager")
	require.NoError(t, err)
	derived := f.svc.Deriver.Derive(id)

	token, err := f.svc.Issuer.Issue(toJWT(derived))
	require.NoError(t, err)

	got, err := f.svc.Authenticate(ctx, "  "+token+"  ")
	require.NoError(t, err)

	for _, typ := range []string{
		domain.ClaimName,
		domain.ClaimSubject,
		domain.ClaimPreferredUsername,
		domain.ClaimDisplayName,
		domain.ClaimEmail,
		domain.ClaimAuthTime,
		domain.ClaimTokenID,
	} {
		require.Equal(t, derived.Get(typ), got.Get(typ), typ)
	}
	require.Equal(t, derived.Roles(), got.Roles())
	require.Equal(t, "manager@example.com", got.Get(domain.ClaimEmail))
	require.True(t, domain.HasRole(got, "Manager"))
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	other, err := jwtx.NewIssuer(jwtx.IssuerOptions{
		Key:      []byte("ffffffffffffffffffffffffffffffff"),
		Issuer:   "tokenauth-test",
		Audience: "tokenauth-clients",
		Now:      f.clock.Now,
	})
	require.NoError(t, err)
	foreign, err := other.Issue(jwtx.Claims{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		reason string
		want   error
	}{
		{"blank", "", "malformed", jwtx.ErrMalformed},
		{"garbage", "not-a-jwt", "malformed", jwtx.ErrMalformed},
		{"wrong key", foreign, "bad-signature", jwtx.ErrInvalidSig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := f.svc.Authenticate(ctx, tt.token)
			require.ErrorIs(t, err, ErrUnauthorized)
			require.ErrorIs(t, err, tt.want)
			require.ErrorContains(t, err, tt.reason)
			require.Equal(t, tt.reason, jwtx.Reason(err))
			require.Nil(t, set)
		})
	}
}

type panicVerifier struct{}

func (panicVerifier) Verify(string) (jwtx.Claims, error) { panic("boom") }

func TestAuthenticate_RecoversPanics(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.svc.Verifier = panicVerifier{}

	_, err := f.svc.Authenticate(context.Background(), "a.b.c")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_RotationIsSingleUse(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	first, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, first.RefreshToken)
	require.NotEqual(t, login.AccessToken, first.AccessToken)
	require.Nil(t, first.User)
	require.Equal(t, domain.TokenTypeBearer, first.TokenType)

	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	set, err := f.svc.Authenticate(ctx, second.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin", set.Subject())
}

func TestRefresh_Rejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, "never-issued")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = f.svc.Refresh(ctx, " ")
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "user", "user123")
	require.NoError(t, err)

	f.clock.Advance(jwtx.DefaultRefreshTokenTTL)
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_OwnerGone(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.refresh.Store(ctx, "departed", "orphan-token", f.clock.Now().Add(time.Hour)))

	_, err := f.svc.Refresh(ctx, "orphan-token")
	require.ErrorIs(t, err, ErrUserNotFound)

	// the token was consumed on the way
	_, err = f.svc.Refresh(ctx, "orphan-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "user", "user123")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, "never-issued"))
	require.NoError(t, f.svc.Logout(ctx, ""))

	for _, tok := range []string{login.RefreshToken, "never-issued"} {
		_, err := f.svc.Refresh(ctx, tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestLogoutAll(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	a1, err := f.svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	a2, err := f.svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	u, err := f.svc.Login(ctx, "user", "user123")
	require.NoError(t, err)

	n, err := f.svc.LogoutAll(ctx, "Admin")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	for _, tok := range []string{a1.RefreshToken, a2.RefreshToken} {
		_, err := f.svc.Refresh(ctx, tok)
		require.ErrorIs(t, err, ErrInvalidToken)
	}

	_, err = f.svc.Refresh(ctx, u.RefreshToken)
	require.NoError(t, err)

	_, err = f.svc.LogoutAll(ctx, "")
	require.ErrorIs(t, err, ErrInvalidRequest)
}
