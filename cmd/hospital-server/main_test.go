package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvdm12/hospital-api/internal/platform/lock"
)

func TestNewLockerWithoutRedis(t *testing.T) {
	locker, err := newLocker(context.Background(), "", 10*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := locker.(lock.NoopLocker); !ok {
		t.Errorf("expected NoopLocker when redis is not configured, got %T", locker)
	}
}

func TestNewLockerRejectsBadURL(t *testing.T) {
	_, err := newLocker(context.Background(), "://not-a-url", 10*time.Second, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}
