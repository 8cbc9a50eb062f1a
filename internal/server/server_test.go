package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixbatch/internal/compression"
	"pixbatch/internal/database"
	"pixbatch/internal/operations"
	"pixbatch/internal/progress"
	"pixbatch/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *progress.Broadcaster) {
	t.Helper()
	db, err := database.Initialize(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broadcaster := progress.NewBroadcaster()
	history := services.NewHistoryService(db)
	batches := services.NewBatchService(operations.NewDefaultRegistry(nil), nil, broadcaster,
		history, services.NewStatsService(history), services.BatchOptions{MaxParallelism: 2, Logger: logger})
	pdf := services.NewPDFService(compression.NewCompressor("", logger), nil, logger)

	return New(batches, pdf, broadcaster, logger), broadcaster
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		img.Set(x, x, color.NRGBA{G: 180, A: 255})
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListOperations(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(s.Router(), http.MethodGet, "/api/v1/operations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Operations []operations.Info `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Operations)
}

func TestSubmitAndFetchBatch(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()
	input := writePNG(t, t.TempDir(), "shot.png")
	out := t.TempDir()

	w := doJSON(router, http.MethodPost, "/api/v1/batches", services.BatchRequest{
		Operation:  "compress_webp",
		InputPaths: []string{input},
		OutputDir:  out,
		Params:     operations.Params{Quality: 70},
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var submitted submitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.NotEmpty(t, submitted.BatchID)
	assert.Equal(t, 1, submitted.Total)

	handle, ok := s.batches.Get(submitted.BatchID)
	require.True(t, ok)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := handle.Wait(ctx)
	require.NoError(t, err)

	w = doJSON(router, http.MethodGet, "/api/v1/batches/"+submitted.BatchID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched batchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, statusFinished, fetched.Status)
	assert.Equal(t, "1 of 1 files processed", fetched.Message)
	require.NotNil(t, fetched.Summary)
	assert.FileExists(t, fetched.Summary.Results[0].OutputPath)

	w = doJSON(router, http.MethodDelete, "/api/v1/batches/"+submitted.BatchID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/batches/"+submitted.BatchID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitBatchErrors(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"malformed", "not an object", http.StatusBadRequest},
		{"unknown operation", services.BatchRequest{Operation: "nope", InputPaths: []string{"/a.png"}, OutputDir: t.TempDir()}, http.StatusNotFound},
		{"no inputs", services.BatchRequest{Operation: "compress_webp", OutputDir: t.TempDir()}, http.StatusBadRequest},
		{"bad params", services.BatchRequest{Operation: "compress_webp", InputPaths: []string{"/a.png"}, OutputDir: t.TempDir(), Params: operations.Params{Quality: 500}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/v1/batches", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestCancelEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	w := doJSON(router, http.MethodPost, "/api/v1/batches/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/cancel", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"cancelled":0}`, w.Body.String())
}

func TestRunPDF(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()
	dir := t.TempDir()
	frames := []string{writePNG(t, dir, "a.png"), writePNG(t, dir, "b.png")}
	outputPath := filepath.Join(dir, "frames.pdf")

	w := doJSON(router, http.MethodPost, "/api/v1/pdf/images", pdfRequest{Inputs: frames, OutputPath: outputPath})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.FileExists(t, outputPath)

	w = doJSON(router, http.MethodPost, "/api/v1/pdf/merge", pdfRequest{OutputPath: outputPath})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/pdf/rotate", pdfRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompression(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/operations", nil)
	req.Header.Set("Accept-Encoding", "zstd, gzip")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "zstd", w.Header().Get("Content-Encoding"))

	dec, err := zstd.NewReader(w.Body)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "compress_webp")
}

func TestEventsStream(t *testing.T) {
	s, broadcaster := newTestServer(t)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/events", nil)
	require.NoError(t, err)

	type response struct {
		resp *http.Response
		err  error
	}
	responses := make(chan response, 1)
	go func() {
		resp, err := http.DefaultClient.Do(req)
		responses <- response{resp, err}
	}()

	require.Eventually(t, func() bool { return broadcaster.Len() == 1 }, 5*time.Second, 10*time.Millisecond)
	broadcaster.Emit(progress.Event{BatchID: "b1", Completed: 1, Total: 2, CurrentFile: "/x/a.png"})

	r := <-responses
	require.NoError(t, r.err)
	defer r.resp.Body.Close()
	assert.True(t, strings.HasPrefix(r.resp.Header.Get("Content-Type"), "text/event-stream"))

	scanner := bufio.NewScanner(r.resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" && len(lines) > 0 {
			break
		}
		lines = append(lines, line)
	}
	stream := strings.Join(lines, "\n")
	assert.Contains(t, stream, "processing-progress")
	assert.Contains(t, stream, `"batch_id":"b1"`)

	cancel()
	require.Eventually(t, func() bool { return broadcaster.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
}
