package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixbatch/internal/pathguard"
)

func makeItems(t *testing.T, n int) []WorkItem {
	t.Helper()
	inDir := t.TempDir()
	outDir := t.TempDir()

	items := make([]WorkItem, 0, n)
	for i := 0; i < n; i++ {
		input := filepath.Join(inDir, fmt.Sprintf("file-%02d.png", i))
		require.NoError(t, os.WriteFile(input, []byte("input"), 0o644))
		items = append(items, WorkItem{
			ID:         fmt.Sprintf("item-%d", i),
			Index:      i,
			InputPath:  input,
			OutputPath: filepath.Join(outDir, fmt.Sprintf("file-%02d-out.png", i)),
		})
	}
	return items
}

func writeOutput(_ context.Context, item WorkItem) (Output, error) {
	if err := os.WriteFile(item.OutputPath, []byte("output!"), 0o644); err != nil {
		return Output{}, err
	}
	return Output{Path: item.OutputPath}, nil
}

func TestExecutor_AllSucceed(t *testing.T) {
	items := makeItems(t, 12)
	executor := NewExecutor(Options{MaxParallelism: 4})

	results, err := executor.Run(context.Background(), items, writeOutput, nil)
	require.NoError(t, err)
	require.Len(t, results, len(items))

	for _, r := range results {
		assert.True(t, r.Success, r.Error)
		assert.Equal(t, int64(7), r.OutputSize)
		assert.Equal(t, int64(5), r.InputSize)
		assert.NotEmpty(t, r.OutputPath)
	}
}

func TestExecutor_FailureIsIsolated(t *testing.T) {
	items := makeItems(t, 3)
	bad := items[2].InputPath

	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		if item.InputPath == bad {
			return Output{}, errors.New("cannot decode image")
		}
		return writeOutput(ctx, item)
	}

	results, err := NewExecutor(Options{MaxParallelism: 2}).Run(context.Background(), items, transform, nil)
	require.NoError(t, err)

	summary := Aggregate("b1", "compress_webp", results, len(items))
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Results, 3)

	failed := summary.ByInputPath()[bad]
	assert.False(t, failed.Success)
	assert.Equal(t, "cannot decode image", failed.Error)
	assert.Equal(t, KindTransform, failed.ErrorKind)
	assert.Zero(t, failed.OutputSize)
}

func TestExecutor_PanicIsRecovered(t *testing.T) {
	items := makeItems(t, 4)

	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		if item.Index == 1 {
			panic("decoder bug")
		}
		return writeOutput(ctx, item)
	}

	results, err := NewExecutor(Options{MaxParallelism: 2}).Run(context.Background(), items, transform, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	summary := Aggregate("b1", "resize_images", results, len(items))
	assert.Equal(t, 3, summary.Completed)

	panicked := summary.ByInputPath()[items[1].InputPath]
	assert.False(t, panicked.Success)
	assert.Equal(t, KindPanic, panicked.ErrorKind)
	assert.Contains(t, panicked.Error, "decoder bug")
}

func TestExecutor_CancellationStopsDispatch(t *testing.T) {
	items := makeItems(t, 10)
	token := NewToken()
	var invoked atomic.Int32

	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		invoked.Add(1)
		if item.Index == 2 {
			token.Cancel()
		}
		return writeOutput(ctx, item)
	}

	results, err := NewExecutor(Options{MaxParallelism: 1}).Run(context.Background(), items, transform, token)
	require.NoError(t, err)
	require.Len(t, results, 10)

	summary := Aggregate("b1", "compress_webp", results, len(items))
	assert.Equal(t, 3, summary.Completed)
	assert.Equal(t, 7, summary.Cancelled)
	assert.Equal(t, 0, summary.Failed)
	assert.LessOrEqual(t, invoked.Load(), int32(3))

	for _, r := range summary.Results {
		if r.Cancelled {
			assert.False(t, r.Success)
			assert.Equal(t, "cancelled", r.Error)
			assert.Equal(t, KindCancelled, r.ErrorKind)
		}
	}
}

func TestExecutor_ContextCancelledBeforeStart(t *testing.T) {
	items := makeItems(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var invoked atomic.Int32
	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		invoked.Add(1)
		return writeOutput(ctx, item)
	}

	results, err := NewExecutor(Options{MaxParallelism: 2}).Run(ctx, items, transform, nil)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Zero(t, invoked.Load())
	for _, r := range results {
		assert.True(t, r.Cancelled)
	}
}

func TestExecutor_RespectsParallelismBound(t *testing.T) {
	items := makeItems(t, 12)
	var running, peak atomic.Int32
	full := make(chan struct{})
	var fullOnce sync.Once

	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		now := running.Add(1)
		for {
			old := peak.Load()
			if now <= old || peak.CompareAndSwap(old, now) {
				break
			}
		}
		if now == 3 {
			fullOnce.Do(func() { close(full) })
		}
		// hold the first workers until every slot is busy
		select {
		case <-full:
		case <-time.After(2 * time.Second):
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return writeOutput(ctx, item)
	}

	results, err := NewExecutor(Options{MaxParallelism: 3}).Run(context.Background(), items, transform, nil)
	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.Equal(t, int32(3), peak.Load())
}

func TestExecutor_RunsItemsConcurrently(t *testing.T) {
	const (
		n     = 40
		delay = 25 * time.Millisecond
	)
	items := makeItems(t, n)

	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		time.Sleep(delay)
		return writeOutput(ctx, item)
	}

	started := time.Now()
	results, err := NewExecutor(Options{MaxParallelism: 4}).Run(context.Background(), items, transform, nil)
	elapsed := time.Since(started)
	require.NoError(t, err)
	assert.Len(t, results, n)

	// four workers need about n/4 delays; serial execution needs n
	assert.Less(t, elapsed, n*delay/2, "elapsed %s", elapsed)
}

func TestExecutor_SizesComeFromSourcePath(t *testing.T) {
	items := makeItems(t, 1)
	item := items[0]
	item.SourcePath = item.InputPath
	item.InputPath = "photos/requested.png"

	results, err := NewExecutor(Options{MaxParallelism: 1}).Run(context.Background(), []WorkItem{item}, func(ctx context.Context, w WorkItem) (Output, error) {
		assert.Equal(t, item.SourcePath, w.Source())
		return writeOutput(ctx, w)
	}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "photos/requested.png", results[0].InputPath)
	assert.Equal(t, int64(len("input")), results[0].InputSize)
	assert.True(t, results[0].Success)
}

func TestExecutor_ResultsArriveInCompletionOrder(t *testing.T) {
	items := makeItems(t, 2)

	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		if item.Index == 0 {
			time.Sleep(150 * time.Millisecond)
		}
		return writeOutput(ctx, item)
	}

	results, err := NewExecutor(Options{MaxParallelism: 2}).Run(context.Background(), items, transform, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, items[1].InputPath, results[0].InputPath)
	assert.Equal(t, items[0].InputPath, results[1].InputPath)
}

func TestExecutor_ItemTimeout(t *testing.T) {
	items := makeItems(t, 2)

	transform := func(ctx context.Context, item WorkItem) (Output, error) {
		if item.Index == 0 {
			<-ctx.Done()
			return Output{}, ctx.Err()
		}
		return writeOutput(ctx, item)
	}

	executor := NewExecutor(Options{MaxParallelism: 2, ItemTimeout: 50 * time.Millisecond})
	results, err := executor.Run(context.Background(), items, transform, nil)
	require.NoError(t, err)

	byPath := Aggregate("b1", "crop_images", results, 2).ByInputPath()
	hung := byPath[items[0].InputPath]
	assert.False(t, hung.Success)
	assert.Equal(t, KindTimeout, hung.ErrorKind)
	assert.False(t, hung.Cancelled)
	assert.True(t, byPath[items[1].InputPath].Success)
}

func TestExecutor_EmptyOutputIsFailure(t *testing.T) {
	items := makeItems(t, 1)

	transform := func(_ context.Context, item WorkItem) (Output, error) {
		return Output{Path: item.OutputPath}, os.WriteFile(item.OutputPath, nil, 0o644)
	}

	results, err := NewExecutor(Options{}).Run(context.Background(), items, transform, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, ErrEmptyOutput.Error())
}

func TestExecutor_Preconditions(t *testing.T) {
	executor := NewExecutor(Options{})

	_, err := executor.Run(context.Background(), nil, writeOutput, nil)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = executor.Run(context.Background(), makeItems(t, 1), nil, nil)
	assert.ErrorIs(t, err, ErrNoTransform)
}

func TestDefaultParallelism(t *testing.T) {
	n := DefaultParallelism()
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 8)
	assert.Equal(t, n, NewExecutor(Options{}).MaxParallelism())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"cancelled", fmt.Errorf("page 3: %w", ErrCancelled), KindCancelled},
		{"context", context.Canceled, KindCancelled},
		{"timeout", fmt.Errorf("%w after 1s", ErrTimeout), KindTimeout},
		{"panic", &PanicError{Value: "boom"}, KindPanic},
		{"path", &pathguard.PathError{Path: "x", Err: pathguard.ErrTraversal}, KindPath},
		{"io", &os.PathError{Op: "open", Path: "/x", Err: os.ErrNotExist}, KindIO},
		{"transform", errors.New("bad pixels"), KindTransform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}
