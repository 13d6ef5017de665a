package database

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_UnrecognisedType(t *testing.T) {
	tests := []string{"", "mysql", "oracle", "SQLITE", "postgres"}

	for _, typ := range tests {
		t.Run("type "+typ, func(t *testing.T) {
			db, err := Open(context.Background(), Config{Type: typ})
			if db != nil {
				t.Errorf("Open(%q) returned a backend, want nil", typ)
			}

			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Open(%q) error = %v (%T), want *ConfigError", typ, err, err)
			}
			if cerr.Value != typ {
				t.Errorf("ConfigError.Value = %q, want %q", cerr.Value, typ)
			}
		})
	}
}

func TestOpen_None(t *testing.T) {
	db, err := Open(context.Background(), Config{Type: TypeNone})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, ok := db.(*NoDatabase); !ok {
		t.Errorf("Open() returned %T, want *NoDatabase", db)
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, Config{
		Type: TypeSQLite,
		SQLite: SQLiteConfig{
			Path:        filepath.Join(t.TempDir(), "test.db"),
			BusyTimeout: 5,
		},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close(ctx) //nolint:errcheck // Test cleanup

	if _, ok := db.(*SQLite); !ok {
		t.Errorf("Open() returned %T, want *SQLite", db)
	}

	// Callers use the interface without branching on the concrete type.
	err = db.WithConn(ctx, func(ctx context.Context, conn Conn) error {
		return conn.Execute(ctx, "SELECT 1")
	})
	if err != nil {
		t.Errorf("WithConn() through the interface error = %v", err)
	}
}

func TestDependencyError_Message(t *testing.T) {
	err := &DependencyError{
		Driver: "sqlite3",
		Hint:   "rebuild with CGO_ENABLED=1 so github.com/mattn/go-sqlite3 is compiled in",
	}

	msg := err.Error()
	for _, want := range []string{"sqlite3", "CGO_ENABLED=1"} {
		if !strings.Contains(msg, want) {
			t.Errorf("DependencyError message %q missing %q", msg, want)
		}
	}
}

func TestQueryError_Unwrap(t *testing.T) {
	cause := errors.New("no such table: t")
	err := &QueryError{Query: "SELECT * FROM t", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("QueryError should unwrap to the driver diagnostic")
	}
	if !strings.Contains(err.Error(), "no such table") {
		t.Errorf("QueryError message %q should carry the diagnostic", err.Error())
	}
}
