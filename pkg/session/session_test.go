package session

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"adaptrack-server/pkg/cache"
)

func newCodec() *HMAC {
	return NewHMAC([]byte("test-secret"), time.Hour, cache.NewInMemory())
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := newCodec()
	ctx := context.Background()

	token, err := c.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := c.Verify(ctx, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	c := newCodec()
	ctx := context.Background()

	token, err := c.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tampered := "A" + token[1:]
	if tampered == token {
		tampered = "B" + token[1:]
	}
	if _, err := c.Verify(ctx, tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	c := newCodec()
	if _, err := c.Verify(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	c := newCodec()
	ctx := context.Background()

	// Craft a token whose expiry is already in the past; a valid signature
	// must not rescue it.
	payload := make([]byte, 24)
	binary.BigEndian.PutUint64(payload[0:8], 42)
	binary.BigEndian.PutUint64(payload[8:16], uint64(time.Now().Add(-time.Minute).Unix()))
	if _, err := rand.Read(payload[16:24]); err != nil {
		t.Fatal(err)
	}
	token := c.seal(payload)
	_ = c.store.Set(ctx, sessionKey(token), "42", time.Hour)

	if _, err := c.Verify(ctx, token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestRevokedTokenFailsVerify(t *testing.T) {
	c := newCodec()
	ctx := context.Background()

	token, err := c.Issue(ctx, 42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := c.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := c.Verify(ctx, token); !errors.Is(err, ErrRevoked) {
		t.Fatalf("expected ErrRevoked, got %v", err)
	}
}
