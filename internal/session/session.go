// Package session manages the cached proof of authentication shared by the
// account pages: a bearer token plus the user record, stored under two fixed
// keys in a per-visitor cache.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tokodash/internal/models"

	"github.com/dgrijalva/jwt-go"
)

const (
	TokenKey = "authToken"
	UserKey  = "currentUser"
)

var (
	ErrNoSession     = errors.New("no cached session")
	ErrMalformedUser = errors.New("cached user record is malformed")
	ErrExpired       = errors.New("cached session token has expired")
)

// Cache is the key/value area a session is persisted into.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Session is the authenticated user's token and profile.
type Session struct {
	Token string
	User  models.User
}

// New builds a session from a freshly issued token.
func New(token string, user models.User) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("create session: %w", ErrNoSession)
	}
	return &Session{Token: token, User: user}, nil
}

// Save writes the session into c under the fixed keys.
func (s *Session) Save(c Cache) error {
	raw, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	c.Set(TokenKey, s.Token)
	c.Set(UserKey, string(raw))
	return nil
}

// Load reads the session cached in c. A missing key yields ErrNoSession,
// an undecodable user record ErrMalformedUser, and a JWT whose exp claim
// lies before now ErrExpired.
func Load(c Cache, now time.Time) (*Session, error) {
	token, ok := c.Get(TokenKey)
	if !ok || strings.TrimSpace(token) == "" {
		return nil, ErrNoSession
	}
	raw, ok := c.Get(UserKey)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrNoSession
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedUser, err)
	}

	s := &Session{Token: token, User: user}
	if s.Expired(now) {
		return nil, ErrExpired
	}
	return s, nil
}

// Destroy removes both keys. It is safe to call on an empty cache.
func Destroy(c Cache) {
	c.Delete(TokenKey)
	c.Delete(UserKey)
}

// Expired reports whether the token is a JWT with an exp claim before now.
// Opaque tokens never expire here; the backend rejects them when stale.
func (s *Session) Expired(now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(s.Token, claims); err != nil {
		return false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return now.Unix() > int64(exp)
}

// MemoryCache is a map-backed Cache.
type MemoryCache map[string]string

func (m MemoryCache) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MemoryCache) Set(key, value string) {
	m[key] = value
}

func (m MemoryCache) Delete(key string) {
	delete(m, key)
}
