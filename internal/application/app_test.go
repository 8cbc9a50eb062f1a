package application

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixbatch/internal/batch"
	"pixbatch/internal/config"
	"pixbatch/internal/container"
	"pixbatch/internal/database"
	"pixbatch/internal/services"
)

type fakeDialogs struct {
	opened []string
}

func (f *fakeDialogs) OpenFileDialog(string) ([]string, error)    { return nil, nil }
func (f *fakeDialogs) OpenDirectoryDialog() (string, error)       { return "", nil }
func (f *fakeDialogs) ShowSaveDialog(name string) (string, error) { return name, nil }
func (f *fakeDialogs) OpenFile(path string) error                 { f.opened = append(f.opened, path); return nil }

func newTestApp(t *testing.T) (*App, *fakeDialogs, string) {
	t.Helper()
	db, err := database.Initialize(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	cfg := config.Default()
	cfg.WorkspaceDir = t.TempDir()
	dialogs := &fakeDialogs{}
	app := NewWithContainer(context.Background(), container.New(cfg, db, nil), dialogs)
	return app, dialogs, cfg.WorkspaceDir
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for x := 0; x < 20; x++ {
		img.Set(x, 5, color.NRGBA{R: 200, A: 255})
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestApp_NotReady(t *testing.T) {
	app := NewApp()

	_, err := app.RunBatch(services.BatchRequest{Operation: "compress_webp"})
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Zero(t, app.CancelProcessing())
	assert.False(t, app.CompressPDF("/a.pdf", 50, "").Success)
	assert.Equal(t, "not_ready", app.GetAppStatus()["status"])
}

func TestApp_RunBatchUsesWorkspaceAndDefaults(t *testing.T) {
	app, dialogs, workspace := newTestApp(t)
	input := writePNG(t, t.TempDir(), "photo.png")

	require.NoError(t, app.UpdatePreferences(map[string]interface{}{"open_after_process": true}))

	response, err := app.CompressWebp([]string{input}, 0, "")
	require.NoError(t, err)

	assert.Equal(t, batch.OutcomeSuccess, response.Outcome)
	assert.Equal(t, "1 of 1 files processed", response.Message)
	assert.Equal(t, filepath.Join(workspace, "compressed"), response.OutputDir)
	assert.FileExists(t, filepath.Join(workspace, "compressed", "photo-compressed.webp"))
	assert.Equal(t, []string{response.OutputDir}, dialogs.opened)

	history, err := app.GetBatchHistory(0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "compress_webp", history[0].Operation)

	stats := app.GetStats()
	assert.Equal(t, 1, stats.SessionFilesProcessed)
}

func TestApp_RunBatchPreconditions(t *testing.T) {
	app, _, _ := newTestApp(t)

	_, err := app.RunBatch(services.BatchRequest{Operation: "nope", InputPaths: []string{"/a.png"}})
	assert.Error(t, err)

	_, err = app.ResizeImages(nil, "exact", 10, 10, 0, "")
	assert.ErrorIs(t, err, services.ErrNoInputs)
}

func TestApp_SingleFileDefaultsToWorkspace(t *testing.T) {
	app, _, workspace := newTestApp(t)
	frames := []string{writePNG(t, t.TempDir(), "a.png"), writePNG(t, t.TempDir(), "b.png")}

	result := app.ImagesToPDF(frames, "")
	require.True(t, result.Success, result.Errors)
	assert.Equal(t, filepath.Join(workspace, PDFSubdir, DefaultImagesName), result.OutputPath)

	gif := app.CreateGIF(frames, 80, 0, "")
	require.True(t, gif.Success, gif.Errors)
	assert.Equal(t, filepath.Join(workspace, GeneratedSubdir, "animation.gif"), gif.OutputPath)

	meta, err := app.ReadMetadata(frames[0])
	require.NoError(t, err)
	assert.Equal(t, 20, meta.Width)
}

func TestApp_StatusAndOperations(t *testing.T) {
	app, _, _ := newTestApp(t)

	status := app.GetAppStatus()
	assert.Equal(t, "running", status["status"])
	assert.Equal(t, AppName, status["app_name"])

	names := make([]string, 0)
	for _, info := range app.ListOperations() {
		names = append(names, info.Name)
	}
	assert.Contains(t, names, "bulk_rename")
	assert.Contains(t, names, "compress_pdf")

	require.NoError(t, app.UpdatePreferences(map[string]interface{}{"max_parallelism": float64(2)}))
	prefs, err := app.GetPreferences()
	require.NoError(t, err)
	assert.Equal(t, 2, prefs.MaxParallelism)

	err = app.SetWorkspace("relative")
	var prefsErr *PreferencesError
	assert.ErrorAs(t, err, &prefsErr)
}
