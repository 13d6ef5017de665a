package database

import (
	"context"
	"errors"
	"testing"
)

func TestNoDatabase_CloseTwice(t *testing.T) {
	db := &NoDatabase{}
	ctx := context.Background()

	if err := db.Close(ctx); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := db.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestNoDatabase_WithConn(t *testing.T) {
	db := &NoDatabase{}

	err := db.WithConn(context.Background(), func(context.Context, Conn) error {
		t.Error("fn should never run on the none backend")
		return nil
	})
	if !errors.Is(err, ErrNoBackend) {
		t.Errorf("WithConn() error = %v, want ErrNoBackend", err)
	}
}

func TestNoDatabase_WithConnAfterClose(t *testing.T) {
	db := &NoDatabase{}
	ctx := context.Background()

	if err := db.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// The none backend keeps its contract after close: never a connection.
	err := db.WithConn(ctx, func(context.Context, Conn) error { return nil })
	if !errors.Is(err, ErrNoBackend) {
		t.Errorf("WithConn() after Close error = %v, want ErrNoBackend", err)
	}
}
