package gridfs_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mwantia/gridfs"
	"github.com/mwantia/gridfs/data"
	"github.com/mwantia/gridfs/store"
	"github.com/mwantia/gridfs/store/memory"
	"github.com/mwantia/gridfs/store/sqlite"
)

type TestDriverFactory func(tst *testing.T) (store.Driver, store.Config)

func GetTestDriverFactories() map[string]TestDriverFactory {
	return map[string]TestDriverFactory{
		"memory": func(tst *testing.T) (store.Driver, store.Config) {
			return memory.New(), store.Config{
				Zone:     "testzone",
				Username: "tester",
			}
		},
		"sqlite": func(tst *testing.T) (store.Driver, store.Config) {
			return &sqlite.Driver{}, store.Config{
				Zone:     "testzone",
				Username: "tester",
				Options: map[string]string{
					"path": filepath.Join(tst.TempDir(), "grid.db"),
				},
			}
		},
	}
}

func newTestFileSystem(tst *testing.T, factory TestDriverFactory, opts ...gridfs.Option) *gridfs.FileSystem {
	driver, cfg := factory(tst)

	fs, err := gridfs.New(driver, cfg, opts...)
	if err != nil {
		tst.Fatalf("Failed to initialize filesystem: %v", err)
	}
	tst.Cleanup(func() { fs.Close() })

	return fs
}

// TestAllDrivers_FileOperations verifies basic write, read, stat and
// unlink round trips across all driver implementations.
func TestAllDrivers_FileOperations(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			content := []byte("hello world")
			if err := fs.WriteFile(ctx, "/test.txt", content); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}

			got, err := fs.ReadFile(ctx, "/test.txt")
			if err != nil {
				tst.Fatalf("ReadFile failed: %v", err)
			}
			if !bytes.Equal(got, content) {
				tst.Errorf("Expected %q, got %q", content, got)
			}

			size, err := fs.GetSize(ctx, "/test.txt")
			if err != nil {
				tst.Fatalf("GetSize failed: %v", err)
			}
			if size != int64(len(content)) {
				tst.Errorf("Expected size %d, got %d", len(content), size)
			}

			if err := fs.UnlinkFile(ctx, "/test.txt"); err != nil {
				tst.Fatalf("Unlink failed: %v", err)
			}

			if _, err := fs.Stat(ctx, "/test.txt"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist, got %v", err)
			}
		})
	}
}

// TestAllDrivers_DirectoryOperations verifies directory creation,
// listing and removal across all driver implementations.
func TestAllDrivers_DirectoryOperations(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			if err := fs.CreateDirectory(ctx, "/data"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}

			for i, fname := range []string{"file1.txt", "file2.txt", "file3.txt"} {
				if err := fs.WriteFile(ctx, "/data/"+fname, []byte{byte(i)}); err != nil {
					tst.Fatalf("WriteFile %s failed: %v", fname, err)
				}
			}

			entries, err := fs.ReadDirectory(ctx, "/data")
			if err != nil {
				tst.Fatalf("ReadDirectory failed: %v", err)
			}
			if len(entries) != 3 {
				tst.Errorf("Expected 3 entries, got %d", len(entries))
			}

			names, err := fs.ListDirectory(ctx, "/data")
			if err != nil {
				tst.Fatalf("ListDirectory failed: %v", err)
			}
			if !slices.Contains(names, "/data/file2.txt") {
				tst.Errorf("Expected full child paths, got %v", names)
			}

			if err := fs.RemoveDirectory(ctx, "/data", false); !errors.Is(err, data.ErrNotEmpty) {
				tst.Errorf("Expected ErrNotEmpty removing populated directory, got %v", err)
			}

			if _, err := fs.Stat(ctx, "/data"); err != nil {
				tst.Errorf("Directory should still exist, got %v", err)
			}

			if err := fs.CreateDirectory(ctx, "/data"); !errors.Is(err, data.ErrExist) {
				tst.Errorf("Expected ErrExist recreating directory, got %v", err)
			}
		})
	}
}

// TestAllDrivers_NestedPaths verifies deeply nested operations and
// ancestor creation across all driver implementations.
func TestAllDrivers_NestedPaths(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			if err := fs.CreateDirectory(ctx, "/a/b/c"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist without parents, got %v", err)
			}

			if err := fs.CreateDirectoryAll(ctx, "/a/b/c"); err != nil {
				tst.Fatalf("CreateDirectoryAll failed: %v", err)
			}

			// Repeating is fine; existing ancestors are tolerated.
			if err := fs.CreateDirectoryAll(ctx, "/a/b/c"); err != nil {
				tst.Fatalf("CreateDirectoryAll repeat failed: %v", err)
			}

			if err := fs.WriteFile(ctx, "/a/b/c/file.txt", []byte("nested")); err != nil {
				tst.Fatalf("WriteFile nested failed: %v", err)
			}

			isFile, err := fs.IsFile(ctx, "/a/b/c/file.txt")
			if err != nil || !isFile {
				tst.Errorf("Expected data object, got isFile=%v err=%v", isFile, err)
			}

			isDir, err := fs.IsDirectory(ctx, "/a/b")
			if err != nil || !isDir {
				tst.Errorf("Expected collection, got isDir=%v err=%v", isDir, err)
			}

			isDir, err = fs.IsDirectory(ctx, "/a/missing")
			if err != nil || isDir {
				tst.Errorf("Missing path should be no directory without error, got isDir=%v err=%v", isDir, err)
			}
		})
	}
}

// TestAllDrivers_ErrorCases verifies the error taxonomy for invalid
// operations across all driver implementations.
func TestAllDrivers_ErrorCases(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			if _, err := fs.Stat(ctx, "/nonexistent"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist, got %v", err)
			}

			if _, err := fs.OpenRead(ctx, "/nonexistent"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist opening missing object, got %v", err)
			}

			if err := fs.CreateDirectory(ctx, "/testdir"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}

			if _, err := fs.OpenRead(ctx, "/testdir"); !errors.Is(err, data.ErrIsDirectory) {
				tst.Errorf("Expected ErrIsDirectory reading collection, got %v", err)
			}

			if err := fs.UnlinkFile(ctx, "/testdir"); !errors.Is(err, data.ErrIsDirectory) {
				tst.Errorf("Expected ErrIsDirectory unlinking collection, got %v", err)
			}

			if err := fs.WriteFile(ctx, "/missing/file.txt", []byte("x")); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist writing below missing parent, got %v", err)
			}

			// Escapes are rejected before any session is touched.
			if _, err := fs.Stat(ctx, "/../other"); !errors.Is(err, data.ErrInvalidPath) {
				tst.Errorf("Expected ErrInvalidPath for root escape, got %v", err)
			}
			if _, err := fs.Stat(ctx, "/bad\x00name"); !errors.Is(err, data.ErrInvalidPath) {
				tst.Errorf("Expected ErrInvalidPath for NUL byte, got %v", err)
			}

			var operr *gridfs.OpError
			_, err := fs.Stat(ctx, "/nonexistent")
			if !errors.As(err, &operr) {
				tst.Errorf("Expected OpError wrapper, got %T", err)
			} else if operr.Path != "/nonexistent" {
				tst.Errorf("Expected path in OpError, got %q", operr.Path)
			}
		})
	}
}

// TestAllDrivers_StatOperations verifies metadata fields and the
// requested-field masks across all driver implementations.
func TestAllDrivers_StatOperations(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			content := []byte("test content for stat")
			if err := fs.WriteFile(ctx, "/stattest.txt", content); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}

			info, err := fs.Stat(ctx, "/stattest.txt")
			if err != nil {
				tst.Fatalf("Stat failed: %v", err)
			}

			if info.Name != "stattest.txt" {
				tst.Errorf("Expected name 'stattest.txt', got %q", info.Name)
			}
			if info.Path != "/stattest.txt" {
				tst.Errorf("Expected path '/stattest.txt', got %q", info.Path)
			}
			if info.Size != int64(len(content)) {
				tst.Errorf("Expected size %d, got %d", len(content), info.Size)
			}
			if info.IsDir() {
				tst.Error("Expected data object, got collection")
			}
			if info.ModifyTime.IsZero() {
				tst.Error("Expected modify time to be populated")
			}
			if info.HasChecksum() {
				tst.Error("Checksum should not be populated without StatChecksum")
			}

			info, err = fs.StatMetadata(ctx, "/stattest.txt", data.StatAll)
			if err != nil {
				tst.Fatalf("StatMetadata failed: %v", err)
			}
			if !info.HasChecksum() {
				tst.Error("Expected checksum with StatAll")
			}

			if err := fs.CreateDirectory(ctx, "/statdir"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}

			dirInfo, err := fs.Stat(ctx, "/statdir")
			if err != nil {
				tst.Fatalf("Stat collection failed: %v", err)
			}
			if !dirInfo.IsDir() {
				tst.Error("Expected collection, got data object")
			}
			if dirInfo.Size != 0 {
				tst.Errorf("Collections report size 0, got %d", dirInfo.Size)
			}
		})
	}
}

// TestAllDrivers_MoveOperations verifies object and collection moves
// with their overwrite rules across all driver implementations.
func TestAllDrivers_MoveOperations(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			if err := fs.WriteFile(ctx, "/src.txt", []byte("payload")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}

			if err := fs.MoveFile(ctx, "/src.txt", "/dst.txt", false); err != nil {
				tst.Fatalf("MoveFile failed: %v", err)
			}

			if exists, _ := fs.Exists(ctx, "/src.txt"); exists {
				tst.Error("Source should be gone after move")
			}
			got, err := fs.ReadFile(ctx, "/dst.txt")
			if err != nil || !bytes.Equal(got, []byte("payload")) {
				tst.Errorf("Expected moved content, got %q err=%v", got, err)
			}

			if err := fs.WriteFile(ctx, "/other.txt", []byte("other")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}

			if err := fs.MoveFile(ctx, "/other.txt", "/dst.txt", false); !errors.Is(err, data.ErrExist) {
				tst.Errorf("Expected ErrExist without overwrite, got %v", err)
			}
			if err := fs.MoveFile(ctx, "/other.txt", "/dst.txt", true); err != nil {
				tst.Fatalf("MoveFile with overwrite failed: %v", err)
			}
			got, _ = fs.ReadFile(ctx, "/dst.txt")
			if !bytes.Equal(got, []byte("other")) {
				tst.Errorf("Expected overwritten content, got %q", got)
			}

			if err := fs.CreateDirectory(ctx, "/dir"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}
			if err := fs.MoveFile(ctx, "/dst.txt", "/dir", true); !errors.Is(err, data.ErrIsDirectory) {
				tst.Errorf("Expected ErrIsDirectory moving onto collection, got %v", err)
			}
			if err := fs.MoveDirectory(ctx, "/dst.txt", "/elsewhere"); !errors.Is(err, data.ErrNotDirectory) {
				tst.Errorf("Expected ErrNotDirectory moving object as collection, got %v", err)
			}

			if err := fs.WriteFile(ctx, "/dir/inner.txt", []byte("inner")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}
			if err := fs.MoveDirectory(ctx, "/dir", "/dir/nested"); !errors.Is(err, data.ErrInvalidPath) {
				tst.Errorf("Expected ErrInvalidPath moving below itself, got %v", err)
			}
			if err := fs.MoveDirectory(ctx, "/dir", "/moved"); err != nil {
				tst.Fatalf("MoveDirectory failed: %v", err)
			}

			got, err = fs.ReadFile(ctx, "/moved/inner.txt")
			if err != nil || !bytes.Equal(got, []byte("inner")) {
				tst.Errorf("Expected subtree to move, got %q err=%v", got, err)
			}
		})
	}
}

// TestAllDrivers_CopyOperations verifies object copies and their
// overwrite rules across all driver implementations.
func TestAllDrivers_CopyOperations(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			if err := fs.WriteFile(ctx, "/src.txt", []byte("payload")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}

			if err := fs.CopyFile(ctx, "/src.txt", "/copy.txt", false); err != nil {
				tst.Fatalf("CopyFile failed: %v", err)
			}

			for _, path := range []string{"/src.txt", "/copy.txt"} {
				got, err := fs.ReadFile(ctx, path)
				if err != nil || !bytes.Equal(got, []byte("payload")) {
					tst.Errorf("Expected content at %s, got %q err=%v", path, got, err)
				}
			}

			if err := fs.CopyFile(ctx, "/src.txt", "/copy.txt", false); !errors.Is(err, data.ErrExist) {
				tst.Errorf("Expected ErrExist without overwrite, got %v", err)
			}
			if err := fs.CopyFile(ctx, "/src.txt", "/copy.txt", true); err != nil {
				tst.Fatalf("CopyFile with overwrite failed: %v", err)
			}

			if err := fs.CopyFile(ctx, "/missing.txt", "/x.txt", false); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist copying missing source, got %v", err)
			}

			if err := fs.CreateDirectory(ctx, "/dir"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}
			if err := fs.CopyFile(ctx, "/dir", "/x.txt", false); !errors.Is(err, data.ErrIsDirectory) {
				tst.Errorf("Expected ErrIsDirectory copying collection, got %v", err)
			}
		})
	}
}

// TestAllDrivers_RecursiveRemove verifies subtree removal and the
// root-clearing special case across all driver implementations.
func TestAllDrivers_RecursiveRemove(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			if err := fs.CreateDirectoryAll(ctx, "/tree/sub/deep"); err != nil {
				tst.Fatalf("CreateDirectoryAll failed: %v", err)
			}
			for _, path := range []string{"/tree/a.txt", "/tree/sub/b.txt", "/tree/sub/deep/c.txt"} {
				if err := fs.WriteFile(ctx, path, []byte("x")); err != nil {
					tst.Fatalf("WriteFile %s failed: %v", path, err)
				}
			}

			if err := fs.RemoveDirectory(ctx, "/tree", true); err != nil {
				tst.Fatalf("Recursive remove failed: %v", err)
			}
			if exists, _ := fs.Exists(ctx, "/tree"); exists {
				tst.Error("Tree should be gone after recursive remove")
			}

			// The adapter root cannot be removed, only cleared.
			if err := fs.RemoveDirectory(ctx, "/", false); !errors.Is(err, data.ErrInvalidPath) {
				tst.Errorf("Expected ErrInvalidPath removing root, got %v", err)
			}

			if err := fs.WriteFile(ctx, "/leftover.txt", []byte("x")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}
			if err := fs.RemoveDirectory(ctx, "/", true); err != nil {
				tst.Fatalf("Recursive root clear failed: %v", err)
			}

			if exists, _ := fs.Exists(ctx, "/leftover.txt"); exists {
				tst.Error("Children should be gone after root clear")
			}
			if empty, err := fs.IsEmpty(ctx, "/"); err != nil || !empty {
				tst.Errorf("Root should remain and be empty, got empty=%v err=%v", empty, err)
			}
		})
	}
}

// TestAllDrivers_ProtectedNames verifies that clearing the root spares
// the configured protected collections.
func TestAllDrivers_ProtectedNames(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory, gridfs.WithProtectedNames("home"))

			if err := fs.CreateDirectory(ctx, "/home"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}
			if err := fs.WriteFile(ctx, "/home/keep.txt", []byte("keep")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}
			if err := fs.WriteFile(ctx, "/drop.txt", []byte("drop")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}

			if err := fs.RemoveDirectory(ctx, "/", true); err != nil {
				tst.Fatalf("Recursive root clear failed: %v", err)
			}

			if exists, _ := fs.Exists(ctx, "/drop.txt"); exists {
				tst.Error("Unprotected entry should be gone")
			}
			got, err := fs.ReadFile(ctx, "/home/keep.txt")
			if err != nil || !bytes.Equal(got, []byte("keep")) {
				tst.Errorf("Protected subtree should survive, got %q err=%v", got, err)
			}
		})
	}
}

// TestAllDrivers_ExistsAndEmpty verifies the convenience predicates
// across all driver implementations.
func TestAllDrivers_ExistsAndEmpty(t *testing.T) {
	factories := GetTestDriverFactories()

	for name, factory := range factories {
		t.Run(name, func(tst *testing.T) {
			ctx := tst.Context()
			fs := newTestFileSystem(tst, factory)

			exists, err := fs.Exists(ctx, "/nothing")
			if err != nil || exists {
				tst.Errorf("Missing path should report false without error, got exists=%v err=%v", exists, err)
			}

			// Asking twice changes nothing.
			exists, err = fs.Exists(ctx, "/nothing")
			if err != nil || exists {
				tst.Errorf("Exists is not idempotent, got exists=%v err=%v", exists, err)
			}

			if err := fs.WriteFile(ctx, "/empty.txt", nil); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}
			if empty, err := fs.IsEmpty(ctx, "/empty.txt"); err != nil || !empty {
				tst.Errorf("Empty object should report empty, got %v err=%v", empty, err)
			}

			if err := fs.WriteFile(ctx, "/full.txt", []byte("x")); err != nil {
				tst.Fatalf("WriteFile failed: %v", err)
			}
			if empty, err := fs.IsEmpty(ctx, "/full.txt"); err != nil || empty {
				tst.Errorf("Non-empty object should not report empty, got %v err=%v", empty, err)
			}

			if err := fs.CreateDirectory(ctx, "/dir"); err != nil {
				tst.Fatalf("CreateDirectory failed: %v", err)
			}
			if empty, err := fs.IsEmpty(ctx, "/dir"); err != nil || !empty {
				tst.Errorf("Empty collection should report empty, got %v err=%v", empty, err)
			}

			if _, err := fs.IsEmpty(ctx, "/nothing"); !errors.Is(err, data.ErrNotExist) {
				tst.Errorf("Expected ErrNotExist for missing path, got %v", err)
			}
		})
	}
}

// TestFileSystem_RootAnchoring verifies that a root override scopes
// every path below the configured collection.
func TestFileSystem_RootAnchoring(t *testing.T) {
	driver := memory.New()
	cfg := store.Config{Zone: "testzone", Username: "tester"}

	outer, err := gridfs.New(driver, cfg)
	if err != nil {
		t.Fatalf("Failed to initialize filesystem: %v", err)
	}
	defer outer.Close()

	ctx := t.Context()
	if err := outer.CreateDirectoryAll(ctx, "/home/alice"); err != nil {
		t.Fatalf("CreateDirectoryAll failed: %v", err)
	}
	if err := outer.WriteFile(ctx, "/home/alice/doc.txt", []byte("scoped")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	scoped, err := gridfs.New(driver, cfg, gridfs.WithRoot("/testzone/home/alice"))
	if err != nil {
		t.Fatalf("Failed to initialize scoped filesystem: %v", err)
	}
	defer scoped.Close()

	if scoped.Root() != "/testzone/home/alice" {
		t.Errorf("Expected root '/testzone/home/alice', got %q", scoped.Root())
	}

	got, err := scoped.ReadFile(ctx, "/doc.txt")
	if err != nil || !bytes.Equal(got, []byte("scoped")) {
		t.Errorf("Expected scoped read, got %q err=%v", got, err)
	}

	// The scoped adapter cannot look above its anchor.
	if _, err := scoped.Stat(ctx, "/../bob"); !errors.Is(err, data.ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath escaping the anchor, got %v", err)
	}
}

// TestFileSystem_ShutdownRejects verifies that a closed filesystem
// rejects operations and that shutdown stays idempotent.
func TestFileSystem_ShutdownRejects(t *testing.T) {
	fs := newTestFileSystem(t, GetTestDriverFactories()["memory"])
	ctx := t.Context()

	if err := fs.WriteFile(ctx, "/f.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := fs.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := fs.Shutdown(ctx); err != nil {
		t.Fatalf("Second shutdown should be a no-op, got %v", err)
	}

	if _, err := fs.Stat(ctx, "/f.txt"); !errors.Is(err, data.ErrClosed) {
		t.Errorf("Expected ErrClosed after shutdown, got %v", err)
	}
	if _, err := fs.OpenRead(ctx, "/f.txt"); !errors.Is(err, data.ErrClosed) {
		t.Errorf("Expected ErrClosed opening stream after shutdown, got %v", err)
	}
}

// TestFileSystem_SetMetadata verifies the read-only metadata contract.
func TestFileSystem_SetMetadata(t *testing.T) {
	fs := newTestFileSystem(t, GetTestDriverFactories()["memory"])
	ctx := t.Context()

	if err := fs.WriteFile(ctx, "/f.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := fs.Stat(ctx, "/f.txt")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	if err := fs.SetMetadata(ctx, "/f.txt", info); !errors.Is(err, data.ErrNotSupported) {
		t.Errorf("Expected ErrNotSupported, got %v", err)
	}
	if err := fs.SetMetadata(ctx, "/missing.txt", info); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected ErrNotExist for missing node, got %v", err)
	}
}

// TestFileSystem_InvalidOptions verifies option validation at
// construction time.
func TestFileSystem_InvalidOptions(t *testing.T) {
	driver := memory.New()
	cfg := store.Config{Zone: "testzone"}

	cases := map[string]gridfs.Option{
		"zero-pool":      gridfs.WithPoolSize(0),
		"negative-chunk": gridfs.WithChunkSize(-1),
	}

	for name, opt := range cases {
		t.Run(name, func(tst *testing.T) {
			if _, err := gridfs.New(driver, cfg, opt); !errors.Is(err, data.ErrInvalid) {
				tst.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}

	if _, err := gridfs.New(nil, cfg); !errors.Is(err, data.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for nil driver, got %v", err)
	}
	if _, err := gridfs.New(driver, store.Config{}); !errors.Is(err, data.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for missing zone, got %v", err)
	}
}
