package operations

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeTarget(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		params       Params
		wantW, wantH int
		wantErr      error
	}{
		{"exact ignores aspect", 400, 300, Params{Mode: ResizeExact, Width: 100, Height: 100}, 100, 100, nil},
		{"width keeps aspect", 400, 300, Params{Mode: ResizeWidth, Width: 200}, 200, 150, nil},
		{"height keeps aspect", 400, 300, Params{Mode: ResizeHeight, Height: 100}, 133, 100, nil},
		{"percentage rounds", 101, 51, Params{Mode: ResizePercentage, Percentage: 50}, 51, 26, nil},
		{"percentage to zero", 1, 1, Params{Mode: ResizePercentage, Percentage: 10}, 0, 0, ErrZeroDimensions},
		{"width to zero height", 1000, 1, Params{Mode: ResizeWidth, Width: 10}, 0, 0, ErrZeroDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ResizeTarget(tt.w, tt.h, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestCropRect(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		params Params
		want   image.Rectangle
	}{
		{"ratio centered", 400, 300, Params{Ratio: "1:1"}, image.Rect(50, 0, 350, 300)},
		{"ratio top-left", 400, 300, Params{Ratio: "1:1", Anchor: AnchorTopLeft}, image.Rect(0, 0, 300, 300)},
		{"ratio top-right", 400, 300, Params{Ratio: "1:1", Anchor: AnchorTopRight}, image.Rect(100, 0, 400, 300)},
		{"ratio bottom-left", 300, 400, Params{Ratio: "1:1", Anchor: AnchorBottomLeft}, image.Rect(0, 100, 300, 400)},
		{"ratio bottom-right", 300, 400, Params{Ratio: "1:1", Anchor: AnchorBottomRight}, image.Rect(0, 100, 300, 400)},
		{"wide ratio", 400, 400, Params{Ratio: "16:9"}, image.Rect(0, 87, 400, 312)},
		{"free clamps", 100, 80, Params{Ratio: "free", Width: 500, Height: 40}, image.Rect(0, 20, 100, 60)},
		{"explicit origin", 100, 80, Params{CropX: intPtr(10), CropY: intPtr(20), Width: 30, Height: 30}, image.Rect(10, 20, 40, 50)},
		{"explicit origin clipped", 100, 80, Params{CropX: intPtr(90), CropY: intPtr(70), Width: 30, Height: 30}, image.Rect(90, 70, 100, 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CropRect(tt.w, tt.h, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCropRect_Errors(t *testing.T) {
	_, err := CropRect(100, 100, Params{CropX: intPtr(100), CropY: intPtr(0), Width: 10, Height: 10})
	assert.ErrorIs(t, err, ErrZeroDimensions)

	_, err = CropRect(100, 100, Params{Ratio: "abc"})
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = CropRect(100, 100, Params{Ratio: "free"})
	assert.ErrorIs(t, err, ErrZeroDimensions)
}

func TestWatermarkOrigins(t *testing.T) {
	assert.Equal(t, []image.Point{{20, 20}}, WatermarkOrigins(PositionTopLeft, 400, 300, 100, 40))
	assert.Equal(t, []image.Point{{280, 20}}, WatermarkOrigins(PositionTopRight, 400, 300, 100, 40))
	assert.Equal(t, []image.Point{{20, 240}}, WatermarkOrigins(PositionBottomLeft, 400, 300, 100, 40))
	assert.Equal(t, []image.Point{{280, 240}}, WatermarkOrigins(PositionBottomRight, 400, 300, 100, 40))
	assert.Equal(t, []image.Point{{150, 130}}, WatermarkOrigins(PositionCenter, 400, 300, 100, 40))
	assert.Equal(t, []image.Point{{150, 130}}, WatermarkOrigins("unknown", 400, 300, 100, 40))
}

func TestWatermarkOrigins_TiledGridIsFixed(t *testing.T) {
	// step is text size plus 80 in both axes, starting at the margin
	small := WatermarkOrigins(PositionTiled, 400, 300, 100, 40)
	assert.Len(t, small, 3*3)
	assert.Equal(t, image.Point{200, 140}, small[4])

	large := WatermarkOrigins(PositionTiled, 800, 300, 100, 40)
	assert.Len(t, large, 5*3)
	assert.Equal(t, small[1], large[1])
}

func TestRenderPattern(t *testing.T) {
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		params  Params
		index   int
		want    string
		wantErr bool
	}{
		{"all tokens", "/in/holiday.JPG", Params{Pattern: "{date}_{name}_{index}.{ext}", StartIndex: 1}, 0, "2026-03-07_holiday_001.JPG", false},
		{"extension appended", "/in/a.png", Params{Pattern: "photo-{index}", StartIndex: 10}, 2, "photo-012.png", false},
		{"no extension on input", "/in/README", Params{Pattern: "doc-{index}"}, 0, "doc-000", false},
		{"empty pattern", "/in/a.png", Params{}, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderPattern(tt.input, tt.params, Sequence{Index: tt.index, Now: now})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputNames(t *testing.T) {
	seq := Sequence{Now: time.Now()}

	name, err := CompressWebP().OutputName("/in/cat.png", Params{}, seq)
	require.NoError(t, err)
	assert.Equal(t, "cat-compressed.webp", name)

	name, err = ConvertImages().OutputName("/in/cat.png", Params{Format: "jpeg"}, seq)
	require.NoError(t, err)
	assert.Equal(t, "cat-converted.jpg", name)

	name, err = ResizeImages().OutputName("/in/cat.TIF", Params{}, seq)
	require.NoError(t, err)
	assert.Equal(t, "cat-resized.tiff", name)

	name, err = CropImages().OutputName("/in/cat.heic", Params{}, seq)
	require.NoError(t, err)
	assert.Equal(t, "cat-cropped.png", name)

	_, err = OptimizeImages().OutputName("/in/cat.gif", Params{}, seq)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	name, err = CompressPDF(&fakeCompressor{}).OutputName("/in/report.pdf", Params{}, seq)
	require.NoError(t, err)
	assert.Equal(t, "report-compressed.pdf", name)
}
