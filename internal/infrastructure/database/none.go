package database

import "context"

// NoDatabase is the backend used when database features are disabled.
// It never yields a connection.
type NoDatabase struct{}

// Close does nothing. There is nothing to release, and closing any number
// of times is not an error.
func (*NoDatabase) Close(context.Context) error {
	return nil
}

// WithConn always fails with ErrNoBackend. fn is never invoked.
func (*NoDatabase) WithConn(context.Context, func(context.Context, Conn) error) error {
	return ErrNoBackend
}
