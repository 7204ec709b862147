package lock

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNoopLockerRunsCriticalSection(t *testing.T) {
	ran := false
	err := NoopLocker{}.WithDoctorLock(context.Background(), uuid.New(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("critical section did not run")
	}
}

func TestNoopLockerPropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := NoopLocker{}.WithDoctorLock(context.Background(), uuid.New(), func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "://bad"); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
