package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/domain"
)

const anonTokenBytes = 16

const anonCookieMaxAge = 365 * 24 * time.Hour

// IdentityResolver turns a request into the actor performing it.
type IdentityResolver struct {
	tokens       *TokenManager
	cookieName   string
	cookieSecure bool
}

// NewIdentityResolver constructs a resolver.
func NewIdentityResolver(tokens *TokenManager, cookieName string, cookieSecure bool) *IdentityResolver {
	if cookieName == "" {
		cookieName = "anon_vote_id"
	}
	return &IdentityResolver{tokens: tokens, cookieName: cookieName, cookieSecure: cookieSecure}
}

// Authenticate returns the bearer identity, if any. A missing, malformed or expired
// token is reported as ok=false.
func (r *IdentityResolver) Authenticate(c *fiber.Ctx) (domain.Actor, bool) {
	raw := bearerToken(c.Get(fiber.HeaderAuthorization))
	if raw == "" || r.tokens == nil {
		return domain.Actor{}, false
	}
	claims, err := r.tokens.ParseToken(raw)
	if err != nil {
		return domain.Actor{}, false
	}
	actor, err := claims.Actor()
	if err != nil {
		return domain.Actor{}, false
	}
	return actor, true
}

// Resolve returns the bearer identity or, failing that, the anonymous cookie
// identity. A visitor without the cookie gets a fresh token, set on the response.
func (r *IdentityResolver) Resolve(c *fiber.Ctx) (domain.Actor, error) {
	if actor, ok := r.Authenticate(c); ok {
		return actor, nil
	}
	if token := strings.TrimSpace(c.Cookies(r.cookieName)); isAnonToken(token) {
		return domain.AnonymousActor(token), nil
	}

	token, err := newAnonToken()
	if err != nil {
		return domain.Actor{}, err
	}
	c.Cookie(&fiber.Cookie{
		Name:     r.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge / time.Second),
		Expires:  time.Now().Add(anonCookieMaxAge),
		HTTPOnly: true,
		Secure:   r.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return domain.AnonymousActor(token), nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func newAnonToken() (string, error) {
	buf := make([]byte, anonTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// isAnonToken accepts only tokens this service could have minted.
func isAnonToken(s string) bool {
	if len(s) != anonTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
