package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/store"
)

// CookieName is the name of the session cookie.
const CookieName = "adaptiq_session"

var (
	// ErrInvalidSession is returned for missing, expired or tampered tokens.
	ErrInvalidSession = errors.New("invalid session")

	// ErrNoSecret is returned when the session secret is empty.
	ErrNoSecret = errors.New("session secret is empty")
)

// Session is the authenticated user for one request.
type Session struct {
	UserID      int64
	Username    string
	Preferences store.Preferences
}

// NewSession builds a Session from a stored user.
func NewSession(u *store.User) *Session {
	return &Session{UserID: u.ID, Username: u.Username, Preferences: u.Preferences}
}

// Claims are the JWT claims carried by the session cookie. Subject holds
// the user id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidSession)
	}
	return id, nil
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token issuer. ttl is the lifetime of a regular
// session; remembered sessions last RememberFactor times longer.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// RememberFactor extends the lifetime of "remember me" sessions.
const RememberFactor = 30

// TTL returns the token lifetime.
func (t *Tokens) TTL(remember bool) time.Duration {
	if remember {
		return t.ttl * RememberFactor
	}
	return t.ttl
}

// Issue signs a token for the user and returns it with its expiry.
func (t *Tokens) Issue(userID int64, username string, remember bool) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.TTL(remember))
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns its claims.
func (t *Tokens) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
