// Package session issues anonymous browser sessions. Each session carries
// only an owner id, which scopes the comparisons a browser can see.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption. Production deployments
// must use cryptographically random keys generated with:
//
//	openssl rand -base64 32
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const ownerKeyPrefix = "session:owner:"

// ErrNoOwner is returned by RedisStore.Save for a session without a valid
// owner id. The owner id is the only value the store keeps.
var ErrNoOwner = errors.New("session has no owner id")

// RedisStore is a sessions.Store that maps a random session id to the owner
// id it was issued for. The cookie carries only the signed, encrypted session
// id; Redis holds "session:owner:<id>" -> owner uuid. Values other than the
// owner id are not persisted.
//
// The Redis key expires after IdleTTL without a request and every load pushes
// the expiry forward, so an owner id lives exactly as long as the browser
// keeps using it.
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	options sessions.Options
	idleTTL time.Duration
}

// StoreOptions configures NewRedisStore.
type StoreOptions struct {
	AuthKey       []byte
	EncryptionKey []byte
	// Secure restricts the cookie to HTTPS. Enable in production.
	Secure bool
	// MaxAge is the cookie lifetime.
	MaxAge time.Duration
	// IdleTTL is how long the owner id survives without a request. Zero means
	// MaxAge. Set it to the comparison idle TTL so sessions and the
	// comparisons they own expire together.
	IdleTTL time.Duration
}

// NewRedisStore creates a Redis-backed session store.
//
//	store := session.NewRedisStore(app.Redis.Client(), session.StoreOptions{
//	    AuthKey:       []byte(cfg.SessionAuthKey),
//	    EncryptionKey: []byte(cfg.SessionEncryptionKey),
//	    Secure:        cfg.Environment == config.EnvProduction,
//	    MaxAge:        cfg.SessionMaxAge,
//	    IdleTTL:       cfg.ComparisonIdleTTL,
//	})
func NewRedisStore(client *redis.Client, opts StoreOptions) *RedisStore {
	idle := opts.IdleTTL
	if idle <= 0 || idle > opts.MaxAge {
		idle = opts.MaxAge
	}
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(opts.AuthKey, opts.EncryptionKey),
		options: sessions.Options{
			Path:     "/",
			MaxAge:   int(opts.MaxAge.Seconds()),
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: http.SameSiteLaxMode,
		},
		idleTTL: idle,
	}
}

// Get returns the session for name, cached per request by the gorilla registry.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New resolves the request cookie to its owner id and refreshes the idle
// expiry. A missing, tampered or expired cookie yields a fresh session and
// no error; only a Redis failure is reported.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := s.fresh(name)

	c, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return sess, nil
	}

	owner, err := s.touch(r.Context(), id)
	switch {
	case errors.Is(err, redis.Nil):
		return sess, nil
	case err != nil:
		return sess, err
	}

	sess.ID = id
	sess.Values[ownerIDValueKey] = owner.String()
	sess.IsNew = false
	return sess, nil
}

// Save stores the owner id under the session id and writes the cookie.
// MaxAge < 0 deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	if sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.client.Del(r.Context(), ownerKeyPrefix+sess.ID).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	owner, ok := ownerIDFromSession(sess)
	if !ok {
		return ErrNoOwner
	}
	if sess.ID == "" {
		sess.ID = base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
	}
	if err := s.client.Set(r.Context(), ownerKeyPrefix+sess.ID, owner.String(), s.idleTTL).Err(); err != nil {
		return fmt.Errorf("store session owner: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), encoded, sess.Options))
	return nil
}

func (s *RedisStore) fresh(name string) *sessions.Session {
	sess := sessions.NewSession(s, name)
	opts := s.options
	sess.Options = &opts
	sess.IsNew = true
	return sess
}

// touch reads the owner id for a session and slides its expiry. A stored
// value that is not a uuid counts as missing.
func (s *RedisStore) touch(ctx context.Context, id string) (uuid.UUID, error) {
	raw, err := s.client.GetEx(ctx, ownerKeyPrefix+id, s.idleTTL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("load session owner: %w", err)
	}
	owner, err := uuid.Parse(raw)
	if err != nil || owner == uuid.Nil {
		return uuid.Nil, redis.Nil
	}
	return owner, nil
}
