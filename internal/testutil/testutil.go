// Package testutil provides shared test helpers for setting up caches and stub servers.
package testutil

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/hiring"
	"github.com/starford/raido/internal/stubapi"
	"github.com/starford/raido/internal/transport"
)

// TestCache creates a temporary SQLite cache that is automatically cleaned up.
func TestCache(t *testing.T) *cache.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := cache.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestServer starts an httptest.Server over a stub API built with the
// given options and returns it alongside the server handle for
// dataset inspection.
func TestServer(t *testing.T, opts ...stubapi.Option) (*httptest.Server, *stubapi.Server) {
	t.Helper()
	opts = append([]stubapi.Option{
		stubapi.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	stub := stubapi.New(opts...)
	t.Cleanup(stub.Close)
	srv := httptest.NewServer(stub.Router())
	t.Cleanup(srv.Close)
	return srv, stub
}

// TestService wires a hiring service against a fresh stub server and
// temporary cache. The returned session carries no token; tests that
// exercise auth call Login themselves.
func TestService(t *testing.T, opts ...stubapi.Option) (*hiring.Service, *stubapi.Server, *cache.DB) {
	t.Helper()
	srv, stub := TestServer(t, opts...)
	db := TestCache(t)

	session := transport.NewSession()
	client, err := transport.New(srv.URL, 5*time.Second, session)
	if err != nil {
		t.Fatal(err)
	}
	svc := hiring.NewService(client, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, stub, db
}
