package postgres_test

import (
	"io"
	"os"
	"strconv"
	"testing"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
	"github.com/mwantia/gridfs/store/postgres"
)

// dialTestConn connects against the PostgreSQL instance named by
// GRIDFS_TEST_POSTGRES_HOST, skipping the test when unset.
func dialTestConn(tst *testing.T) store.Conn {
	tst.Helper()

	host := os.Getenv("GRIDFS_TEST_POSTGRES_HOST")
	if host == "" {
		tst.Skip("GRIDFS_TEST_POSTGRES_HOST not set")
	}

	port := 0
	if raw := os.Getenv("GRIDFS_TEST_POSTGRES_PORT"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			tst.Fatalf("Invalid GRIDFS_TEST_POSTGRES_PORT: %v", err)
		}
		port = parsed
	}

	username := os.Getenv("GRIDFS_TEST_POSTGRES_USER")
	if username == "" {
		username = "postgres"
	}

	cfg := store.Config{
		Host:       host,
		Port:       port,
		Zone:       "testzone",
		Username:   username,
		Credential: os.Getenv("GRIDFS_TEST_POSTGRES_PASSWORD"),
		Options:    map[string]string{},
	}
	if db := os.Getenv("GRIDFS_TEST_POSTGRES_DATABASE"); db != "" {
		cfg.Options["database"] = db
	}

	driver := &postgres.Driver{}
	conn, err := driver.Connect(tst.Context(), cfg)
	if err != nil {
		tst.Fatalf("Connect failed: %v", err)
	}
	tst.Cleanup(func() { conn.Close(tst.Context()) })

	return conn
}

func TestConn_RoundTrip(t *testing.T) {
	conn := dialTestConn(t)
	ctx := t.Context()

	// Unique collection per run; real servers persist between runs.
	base := "/testzone/t-" + data.NewSessionID()[:8]
	if err := conn.CreateCollection(ctx, base); err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	defer conn.RemoveCollection(ctx, base)

	remote := base + "/round.txt"
	wc, err := conn.OpenWrite(ctx, remote, store.WriteCreate)
	if err != nil {
		t.Fatalf("OpenWrite failed: %v", err)
	}
	if _, err := wc.Write([]byte("payload")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	defer conn.RemoveObject(ctx, remote)

	stat, err := conn.Stat(ctx, remote, data.StatDefault)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if stat.Size != int64(len("payload")) {
		t.Errorf("Expected size %d, got %d", len("payload"), stat.Size)
	}

	rc, err := conn.OpenRead(ctx, remote, 3)
	if err != nil {
		t.Fatalf("OpenRead failed: %v", err)
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(content) != "load" {
		t.Errorf("Expected ranged read, got %q", content)
	}

	copied := base + "/copy.txt"
	if err := conn.Copy(ctx, remote, copied); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	defer conn.RemoveObject(ctx, copied)

	moved := base + "/moved.txt"
	if err := conn.Rename(ctx, copied, moved); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := conn.RemoveObject(ctx, moved); err != nil {
		t.Fatalf("RemoveObject failed: %v", err)
	}
	if _, err := conn.Stat(ctx, moved, data.StatBasic); !store.IsCode(err, store.CodeNotFound) {
		t.Errorf("Expected CodeNotFound, got %v", err)
	}
}
