package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/docvault/pkg/file"
	"github.com/dmitrymomot/docvault/pkg/ingest"
	"github.com/dmitrymomot/docvault/pkg/logger"
	"github.com/dmitrymomot/docvault/pkg/uniquename"
)

func textItem(name, content string) ingest.Item {
	return ingest.Item{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func readerItem(name string, r io.Reader) ingest.Item {
	return ingest.Item{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	}
}

// fixedNamer hands out names from a list, repeating the last one.
type fixedNamer struct {
	mu    sync.Mutex
	names []string
	calls int
}

func (n *fixedNamer) Generate(string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	i := min(n.calls, len(n.names)-1)
	n.calls++
	return n.names[i]
}

// panicNamer panics for one specific original name.
type panicNamer struct {
	ingest.Namer
	trigger string
}

func (n panicNamer) Generate(original string) string {
	if original == n.trigger {
		panic("namer exploded")
	}
	return n.Namer.Generate(original)
}

type probeFunc func(ctx context.Context, path string) (int64, error)

func (f probeFunc) Size(ctx context.Context, path string) (int64, error) { return f(ctx, path) }

// brokenMkdir fails directory creation for every path.
type brokenMkdir struct {
	file.Storage
}

func (brokenMkdir) MkdirAll(context.Context, string) error {
	return file.ErrFailedToCreateDirectory
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func newPipeline(t *testing.T, exts []string, opts ...ingest.Option) (*ingest.Pipeline, *file.LocalStorage, string) {
	t.Helper()
	root := t.TempDir()
	store, err := file.NewLocalStorage(root)
	require.NoError(t, err)

	settings := ingest.Settings{StorageRoot: root, AllowedExtensions: ingest.NewExtensions(exts...)}
	return ingest.New(settings, store, uniquename.New(), opts...), store, root
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestPipeline_SingleAllowedFile(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".pdf", ".txt"})

	result, err := p.Ingest(context.Background(), ingest.Request{
		Items: []ingest.Item{textItem("report.pdf", "%PDF-1.4 content")},
	})
	require.NoError(t, err)
	require.Len(t, result.Details, 1)

	d := result.Details[0]
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, "report.pdf", d.OriginalName)
	assert.Equal(t, ingest.StatusSuccess, d.Status)
	assert.Equal(t, "report", d.Directory)
	require.NotNil(t, d.Size)
	assert.Equal(t, int64(len("%PDF-1.4 content")), *d.Size)
	assert.Empty(t, d.Error)

	assert.Equal(t, filepath.Join(root, "report"), filepath.Dir(d.SavedPath))
	assert.True(t, strings.HasSuffix(d.SavedPath, ".pdf"))
	data, err := os.ReadFile(d.SavedPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 content", string(data))
}

func TestPipeline_DisallowedExtension(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".pdf"})

	result, err := p.Ingest(context.Background(), ingest.Request{
		Items: []ingest.Item{textItem("virus.exe", "MZ")},
	})
	require.NoError(t, err)
	require.Len(t, result.Details, 1)

	d := result.Details[0]
	assert.Equal(t, ingest.StatusFailed, d.Status)
	assert.Contains(t, d.Error, ".exe")
	assert.Equal(t, "file type .exe not allowed", d.Error)
	assert.Empty(t, d.SavedPath)
	assert.Empty(t, d.Directory)
	assert.Nil(t, d.Size)
	assert.Empty(t, listDir(t, root), "no directory may be created for a rejected file")
}

func TestPipeline_OverrideSharedDirectory(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".txt"})

	result, err := p.Ingest(context.Background(), ingest.Request{
		Items:     []ingest.Item{textItem("a.txt", "a"), textItem("b.txt", "b")},
		Directory: ptr("shared"),
	})
	require.NoError(t, err)
	require.Len(t, result.Details, 2)

	for _, d := range result.Details {
		assert.Equal(t, ingest.StatusSuccess, d.Status)
		assert.Equal(t, "shared", d.Directory)
	}
	assert.NotEqual(t, result.Details[0].SavedPath, result.Details[1].SavedPath)
	assert.Equal(t, []string{"shared"}, listDir(t, root))
	assert.Len(t, listDir(t, filepath.Join(root, "shared")), 2)
}

func TestPipeline_MixedBatch(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".txt"})

	result, err := p.Ingest(context.Background(), ingest.Request{
		Items: []ingest.Item{textItem("ok.txt", "fine"), textItem("bad/../name.exe", "nope")},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Details, 2)
	assert.Equal(t, "ok.txt", result.Details[0].OriginalName)
	assert.Equal(t, ingest.StatusSuccess, result.Details[0].Status)
	assert.Equal(t, "bad/../name.exe", result.Details[1].OriginalName)
	assert.Equal(t, ingest.StatusFailed, result.Details[1].Status)
	assert.Equal(t, []string{"ok"}, listDir(t, root))
}

func TestPipeline_EmptyBatch(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".txt"})

	result, err := p.Ingest(context.Background(), ingest.Request{})
	assert.ErrorIs(t, err, ingest.ErrNoFiles)
	assert.Nil(t, result)
	assert.Empty(t, listDir(t, root))
}

func TestPipeline_SameStemDistinctNames(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".txt"})

	result, err := p.Ingest(context.Background(), ingest.Request{
		Items: []ingest.Item{textItem("a.txt", "one"), textItem("a.txt", "two"), textItem("a.txt", "three")},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.SuccessCount)

	seen := map[string]bool{}
	for _, d := range result.Details {
		assert.Equal(t, "a", d.Directory)
		assert.False(t, seen[d.SavedPath], "duplicate saved path %s", d.SavedPath)
		seen[d.SavedPath] = true
	}
	assert.Len(t, listDir(t, filepath.Join(root, "a")), 3)
}

func TestPipeline_CountsAlwaysAddUp(t *testing.T) {
	t.Parallel()
	p, _, _ := newPipeline(t, []string{".txt", ".md"})

	batches := [][]string{
		{"a.txt"},
		{"a.exe"},
		{"a.txt", "b.md", "c.pdf", "README", ".env", "d.TXT"},
		{"", "x.", "../../y.md"},
	}

	for _, names := range batches {
		items := make([]ingest.Item, 0, len(names))
		for _, n := range names {
			items = append(items, textItem(n, "content"))
		}

		result, err := p.Ingest(context.Background(), ingest.Request{Items: items})
		require.NoError(t, err)
		require.Len(t, result.Details, len(names))
		assert.Equal(t, len(names), result.SuccessCount+result.FailedCount)
		for i, d := range result.Details {
			assert.Equal(t, names[i], d.OriginalName, "order must match input")
			if d.Succeeded() {
				assert.NotEmpty(t, d.SavedPath)
				assert.NotEmpty(t, d.Directory)
				assert.NotNil(t, d.Size)
				assert.Empty(t, d.Error)
			} else {
				assert.NotEmpty(t, d.Error)
				assert.Empty(t, d.SavedPath)
				assert.Nil(t, d.Size)
			}
		}
	}
}

func TestPipeline_EmptyFileReportsZeroSize(t *testing.T) {
	t.Parallel()
	p, _, _ := newPipeline(t, []string{".txt"})

	result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{textItem("empty.txt", "")}})
	require.NoError(t, err)
	require.NotNil(t, result.Details[0].Size)
	assert.Equal(t, int64(0), *result.Details[0].Size)
}

func TestPipeline_NameCollision(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T, names ...string) (*ingest.Pipeline, string) {
		t.Helper()
		root := t.TempDir()
		store, err := file.NewLocalStorage(root)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "taken.txt"), []byte("keep"), 0644))

		settings := ingest.Settings{StorageRoot: root, AllowedExtensions: ingest.NewExtensions(".txt")}
		return ingest.New(settings, store, &fixedNamer{names: names}), root
	}

	t.Run("regenerates taken name", func(t *testing.T) {
		t.Parallel()
		p, root := setup(t, "taken.txt", "taken.txt", "free.txt")

		result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{textItem("notes.txt", "new")}})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "notes", "free.txt"), result.Details[0].SavedPath)

		kept, err := os.ReadFile(filepath.Join(root, "notes", "taken.txt"))
		require.NoError(t, err)
		assert.Equal(t, "keep", string(kept), "existing file must not be overwritten")
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		t.Parallel()
		p, _ := setup(t, "taken.txt")

		_, err := p.Store(context.Background(), textItem("notes.txt", "new"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ingest.ErrItemIO)
		assert.ErrorIs(t, err, file.ErrFileExists)

		var itemErr *ingest.ItemError
		require.ErrorAs(t, err, &itemErr)
		assert.Equal(t, "notes.txt", itemErr.Filename)
	})

	t.Run("taken name is skipped without opening the stream", func(t *testing.T) {
		t.Parallel()
		p, root := setup(t, "taken.txt", "free.txt")

		var opens int
		item := ingest.Item{
			Filename: "notes.txt",
			Open: func() (io.ReadCloser, error) {
				opens++
				return io.NopCloser(strings.NewReader("new")), nil
			},
		}

		stored, err := p.Store(context.Background(), item, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "notes", "free.txt"), stored.SavedPath)
		assert.Equal(t, 1, opens)
	})

	t.Run("configured attempts", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		store, err := file.NewLocalStorage(root)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "taken.txt"), []byte("keep"), 0644))
		settings := ingest.Settings{StorageRoot: root, AllowedExtensions: ingest.NewExtensions(".txt")}

		names := []string{"taken.txt", "taken.txt", "taken.txt", "free.txt"}

		short := ingest.New(settings, store, &fixedNamer{names: names})
		_, err = short.Store(context.Background(), textItem("notes.txt", "new"), nil)
		assert.ErrorIs(t, err, file.ErrFileExists)

		long := ingest.New(settings, store, &fixedNamer{names: names}, ingest.WithNameAttempts(4))
		stored, err := long.Store(context.Background(), textItem("notes.txt", "new"), nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "notes", "free.txt"), stored.SavedPath)
	})
}

func TestPipeline_ItemFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	t.Run("open error", func(t *testing.T) {
		t.Parallel()
		p, _, _ := newPipeline(t, []string{".txt"})
		broken := ingest.Item{Filename: "broken.txt", Open: func() (io.ReadCloser, error) {
			return nil, errors.New("temp file vanished")
		}}

		result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{broken, textItem("fine.txt", "ok")}})
		require.NoError(t, err)
		assert.Equal(t, ingest.StatusFailed, result.Details[0].Status)
		assert.Contains(t, result.Details[0].Error, "temp file vanished")
		assert.Equal(t, ingest.StatusSuccess, result.Details[1].Status)
	})

	t.Run("missing stream", func(t *testing.T) {
		t.Parallel()
		p, _, _ := newPipeline(t, []string{".txt"})

		result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{{Filename: "nil.txt"}}})
		require.NoError(t, err)
		assert.Equal(t, ingest.StatusFailed, result.Details[0].Status)
	})

	t.Run("read error leaves no partial file", func(t *testing.T) {
		t.Parallel()
		p, _, root := newPipeline(t, []string{".txt"})

		result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{
			readerItem("cut.txt", io.MultiReader(strings.NewReader("half"), failingReader{})),
			textItem("after.txt", "ok"),
		}})
		require.NoError(t, err)
		assert.Equal(t, ingest.StatusFailed, result.Details[0].Status)
		assert.Contains(t, result.Details[0].Error, "client went away")
		assert.Empty(t, listDir(t, filepath.Join(root, "cut")))
		assert.Equal(t, ingest.StatusSuccess, result.Details[1].Status)
	})

	t.Run("directory creation failure", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		store, err := file.NewLocalStorage(root)
		require.NoError(t, err)
		settings := ingest.Settings{StorageRoot: root, AllowedExtensions: ingest.NewExtensions(".txt")}
		p := ingest.New(settings, brokenMkdir{store}, uniquename.New())

		result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{textItem("a.txt", "x")}})
		require.NoError(t, err)
		assert.Equal(t, 1, result.FailedCount)
		assert.Equal(t, file.ErrFailedToCreateDirectory.Error(), result.Details[0].Error)
	})

	t.Run("size probe failure removes file", func(t *testing.T) {
		t.Parallel()
		probe := probeFunc(func(context.Context, string) (int64, error) {
			return 0, file.ErrFailedToStatPath
		})
		p, _, root := newPipeline(t, []string{".txt"}, ingest.WithSizeProbe(probe))

		result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{textItem("a.txt", "x")}})
		require.NoError(t, err)
		assert.Equal(t, ingest.StatusFailed, result.Details[0].Status)
		assert.Empty(t, listDir(t, filepath.Join(root, "a")))
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		store, err := file.NewLocalStorage(root)
		require.NoError(t, err)
		settings := ingest.Settings{StorageRoot: root, AllowedExtensions: ingest.NewExtensions(".txt")}
		p := ingest.New(settings, store, panicNamer{Namer: uniquename.New(), trigger: "boom.txt"})

		result, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{
			textItem("boom.txt", "x"),
			textItem("calm.txt", "y"),
		}})
		require.NoError(t, err)
		assert.Equal(t, ingest.StatusFailed, result.Details[0].Status)
		assert.Contains(t, result.Details[0].Error, "namer exploded")
		assert.Equal(t, ingest.StatusSuccess, result.Details[1].Status)

		_, err = p.Store(context.Background(), textItem("boom.txt", "x"), nil)
		assert.ErrorIs(t, err, ingest.ErrItemPanic)
	})
}

func TestPipeline_CanceledContext(t *testing.T) {
	t.Parallel()
	p, _, _ := newPipeline(t, []string{".txt"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Ingest(ctx, ingest.Request{Items: []ingest.Item{textItem("a.txt", "x"), textItem("b.txt", "y")}})
	require.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 2, result.FailedCount)
}

func TestPipeline_ConcurrentRequests(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".txt"})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items := make([]ingest.Item, 0, 5)
			for range 5 {
				items = append(items, textItem("same.txt", "payload"))
			}
			result, err := p.Ingest(context.Background(), ingest.Request{Items: items, Directory: ptr("shared")})
			assert.NoError(t, err)
			assert.Equal(t, 5, result.SuccessCount)
		}()
	}
	wg.Wait()

	assert.Len(t, listDir(t, filepath.Join(root, "shared")), 50)
}

func TestPipeline_Logging(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelDebug))
	p, _, _ := newPipeline(t, []string{".txt"}, ingest.WithLogger(log))

	_, err := p.Ingest(context.Background(), ingest.Request{Items: []ingest.Item{
		textItem("good.txt", "x"),
		textItem("bad.exe", "y"),
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"component":"ingest"`)
	assert.Contains(t, out, `"msg":"file saved"`)
	assert.Contains(t, out, `"msg":"file extension not allowed"`)
	assert.Contains(t, out, `"extension":".exe"`)
	assert.Contains(t, out, `"msg":"batch ingestion completed"`)
	assert.Contains(t, out, `"success":1`)
	assert.Contains(t, out, `"failed":1`)
}

func TestPipeline_Settings(t *testing.T) {
	t.Parallel()
	p, _, root := newPipeline(t, []string{".txt"})
	assert.Equal(t, root, p.Settings().StorageRoot)
}
