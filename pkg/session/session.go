package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash"
	"strconv"
	"time"

	"adaptrack-server/pkg/cache"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpired      = errors.New("session expired")
	ErrRevoked      = errors.New("session revoked")
)

// Codec lists the session token methods the middleware relies on.
// Implementations must be safe for concurrent use.
type Codec interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Verify(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

// HMAC issues session tokens signed with HMAC-SHA256 and records them in the
// cache so logout can revoke a token before its expiry.
// Token payload: userID(int64) + expiry unix(int64) + nonce(8 bytes),
// encoded base64url without padding, signature appended.
type HMAC struct {
	key   []byte
	h     func() hash.Hash
	ttl   time.Duration
	store cache.Cache
}

// NewHMAC creates a session codec with the provided secret key and lifetime.
func NewHMAC(key []byte, ttl time.Duration, store cache.Cache) *HMAC {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMAC{key: append([]byte(nil), key...), h: sha256.New, ttl: ttl, store: store}
}

// seal signs the payload and returns a base64url token payload||sig.
func (c *HMAC) seal(payload []byte) string {
	mac := hmac.New(c.h, c.key)
	mac.Write(payload)
	sig := mac.Sum(nil)
	buf := append(payload, sig...)
	return base64.RawURLEncoding.EncodeToString(buf)
}

// open verifies the token and returns the payload bytes.
func (c *HMAC) open(token string, payloadLen int) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if len(raw) != payloadLen+32 {
		return nil, ErrInvalidToken
	}
	payload := raw[:payloadLen]
	sig := raw[payloadLen:]
	mac := hmac.New(c.h, c.key)
	mac.Write(payload)
	expected := mac.Sum(nil)
	if !hmac.Equal(sig, expected) {
		return nil, ErrInvalidToken
	}
	return payload, nil
}

func (c *HMAC) Issue(ctx context.Context, userID int64) (string, error) {
	payload := make([]byte, 24)
	binary.BigEndian.PutUint64(payload[0:8], uint64(userID))
	binary.BigEndian.PutUint64(payload[8:16], uint64(time.Now().Add(c.ttl).Unix()))
	if _, err := rand.Read(payload[16:24]); err != nil {
		return "", err
	}
	token := c.seal(payload)
	if err := c.store.Set(ctx, sessionKey(token), strconv.FormatInt(userID, 10), c.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (c *HMAC) Verify(ctx context.Context, token string) (int64, error) {
	payload, err := c.open(token, 24)
	if err != nil {
		return 0, err
	}
	userID := int64(binary.BigEndian.Uint64(payload[0:8]))
	expiry := int64(binary.BigEndian.Uint64(payload[8:16]))
	if time.Now().Unix() > expiry {
		return 0, ErrExpired
	}
	if _, ok := c.store.Get(ctx, sessionKey(token)); !ok {
		return 0, ErrRevoked
	}
	return userID, nil
}

func (c *HMAC) Revoke(ctx context.Context, token string) error {
	return c.store.Delete(ctx, sessionKey(token))
}

func sessionKey(token string) string {
	// Hash the token so the cache never holds a usable credential.
	sum := sha256.Sum256([]byte(token))
	return "session:" + base64.RawURLEncoding.EncodeToString(sum[:16])
}
