package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
)

func newResolverApp(t *testing.T, tokens *TokenManager) *fiber.App {
	t.Helper()
	resolver := NewIdentityResolver(tokens, "anon_vote_id", true)
	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		actor, err := resolver.Resolve(c)
		if err != nil {
			return err
		}
		return c.SendString(string(actor.Kind) + "|" + actor.String() + "|" + actor.Token)
	})
	return app
}

func call(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestResolveBearerIdentities(t *testing.T) {
	tokens := NewTokenManager("secret", 5)
	app := newResolverApp(t, tokens)

	userToken, _, err := tokens.GenerateToken(domain.UserActor(12))
	require.NoError(t, err)
	orgToken, _, err := tokens.GenerateToken(domain.OrganizationActor(4))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, body := call(t, app, req)
	assert.Equal(t, "user|user:12|", body)
	assert.Empty(t, resp.Cookies())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "bearer "+orgToken)
	_, body = call(t, app, req)
	assert.Equal(t, "organization|organization:4|", body)
}

func TestResolveFallsBackToAnonymous(t *testing.T) {
	tokens := NewTokenManager("secret", 5)
	app := newResolverApp(t, tokens)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Kind: domain.ActorKindUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "12",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, header := range map[string]string{
		"no header":    "",
		"malformed":    "Token abc",
		"bad jwt":      "Bearer not-a-jwt",
		"expired":      "Bearer " + expiredToken,
		"wrong secret": "Bearer " + mustToken(t, NewTokenManager("other", 5), domain.UserActor(1)),
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, body := call(t, app, req)
			assert.Contains(t, body, "anonymous|anonymous|")

			cookies := resp.Cookies()
			require.Len(t, cookies, 1)
			c := cookies[0]
			assert.Equal(t, "anon_vote_id", c.Name)
			assert.Len(t, c.Value, 32)
			assert.True(t, c.HttpOnly)
			assert.True(t, c.Secure)
			assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
			assert.Equal(t, 365*24*60*60, c.MaxAge)
			assert.Equal(t, "anonymous|anonymous|"+c.Value, body)
		})
	}
}

func TestResolveReusesAnonymousCookie(t *testing.T) {
	app := newResolverApp(t, NewTokenManager("secret", 5))
	token := "0123456789abcdef0123456789abcdef"

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "anon_vote_id", Value: token})
	resp, body := call(t, app, req)

	assert.Equal(t, "anonymous|anonymous|"+token, body)
	assert.Empty(t, resp.Cookies())
}

func TestResolveReplacesForgedCookie(t *testing.T) {
	app := newResolverApp(t, NewTokenManager("secret", 5))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "anon_vote_id", Value: "user:1"})
	resp, _ := call(t, app, req)

	require.Len(t, resp.Cookies(), 1)
	assert.NotEqual(t, "user:1", resp.Cookies()[0].Value)
}

func mustToken(t *testing.T, tm *TokenManager, actor domain.Actor) string {
	t.Helper()
	token, _, err := tm.GenerateToken(actor)
	require.NoError(t, err)
	return token
}
