package sqlite_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
	"github.com/mwantia/gridfs/store/sqlite"
)

func dialTestConn(tst *testing.T, dbPath string) store.Conn {
	tst.Helper()

	driver := &sqlite.Driver{}
	conn, err := driver.Connect(tst.Context(), store.Config{
		Zone:     "testzone",
		Username: "tester",
		Options:  map[string]string{"path": dbPath},
	})
	if err != nil {
		tst.Fatalf("Connect failed: %v", err)
	}
	tst.Cleanup(func() { conn.Close(tst.Context()) })

	return conn
}

func writeObject(tst *testing.T, conn store.Conn, remote, content string) {
	tst.Helper()

	wc, err := conn.OpenWrite(tst.Context(), remote, store.WriteCreate)
	if err != nil {
		tst.Fatalf("OpenWrite %s failed: %v", remote, err)
	}
	if _, err := wc.Write([]byte(content)); err != nil {
		tst.Fatalf("Write %s failed: %v", remote, err)
	}
	if err := wc.Close(); err != nil {
		tst.Fatalf("Close %s failed: %v", remote, err)
	}
}

func readObject(tst *testing.T, conn store.Conn, remote string) string {
	tst.Helper()

	rc, err := conn.OpenRead(tst.Context(), remote, 0)
	if err != nil {
		tst.Fatalf("OpenRead %s failed: %v", remote, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		tst.Fatalf("ReadAll %s failed: %v", remote, err)
	}

	return string(content)
}

func TestDriver_ConnectValidation(t *testing.T) {
	driver := &sqlite.Driver{}

	t.Run("MissingPath", func(tst *testing.T) {
		_, err := driver.Connect(tst.Context(), store.Config{Zone: "testzone"})
		if !store.IsCode(err, store.CodeInvalidName) {
			tst.Errorf("Expected CodeInvalidName without path, got %v", err)
		}
	})

	t.Run("MissingZone", func(tst *testing.T) {
		_, err := driver.Connect(tst.Context(), store.Config{
			Options: map[string]string{"path": filepath.Join(tst.TempDir(), "grid.db")},
		})
		if !store.IsCode(err, store.CodeInvalidName) {
			tst.Errorf("Expected CodeInvalidName without zone, got %v", err)
		}
	})
}

// TestDriver_SharedFile verifies two concurrent sessions on one
// database file observe each other's committed writes.
func TestDriver_SharedFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "grid.db")

	first := dialTestConn(t, dbPath)
	second := dialTestConn(t, dbPath)

	writeObject(t, first, "/testzone/shared.txt", "visible")

	if got := readObject(t, second, "/testzone/shared.txt"); got != "visible" {
		t.Errorf("Expected shared content, got %q", got)
	}

	stat, err := second.Stat(t.Context(), "/testzone/shared.txt", data.StatDefault)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if stat.Size != int64(len("visible")) {
		t.Errorf("Expected size %d, got %d", len("visible"), stat.Size)
	}
}

// TestRename_WildcardNames verifies subtree renames treat '%' and '_'
// in collection names literally instead of as pattern wildcards.
func TestRename_WildcardNames(t *testing.T) {
	conn := dialTestConn(t, filepath.Join(t.TempDir(), "grid.db"))
	ctx := t.Context()

	if err := conn.CreateCollection(ctx, "/testzone/a%b"); err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	writeObject(t, conn, "/testzone/a%b/in.txt", "move me")

	// Siblings that a naive LIKE pattern would also match.
	if err := conn.CreateCollection(ctx, "/testzone/axb"); err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	writeObject(t, conn, "/testzone/axb/keep.txt", "stay put")

	if err := conn.Rename(ctx, "/testzone/a%b", "/testzone/moved"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if got := readObject(t, conn, "/testzone/moved/in.txt"); got != "move me" {
		t.Errorf("Expected moved child, got %q", got)
	}
	if got := readObject(t, conn, "/testzone/axb/keep.txt"); got != "stay put" {
		t.Errorf("Expected sibling untouched, got %q", got)
	}
	if _, err := conn.Stat(ctx, "/testzone/a%b", data.StatBasic); !store.IsCode(err, store.CodeNotFound) {
		t.Errorf("Expected renamed source gone, got %v", err)
	}
}
