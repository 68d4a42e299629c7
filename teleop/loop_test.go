package teleop

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop() (*GraphStore, *RenderLoop) {
	store := NewGraphStore()
	renderer := NewFrameRenderer(200, 200, 200)
	return store, NewRenderLoop(store, renderer, 30)
}

func TestRenderLoop_RenderOnce(t *testing.T) {
	store, loop := newTestLoop()

	assert.Nil(t, loop.LatestPNG(), "no frame before the first render")

	store.SetLivePose(Transform2d{XMeters: 0.1})
	loop.RenderOnce()

	data := loop.LatestPNG()
	require.NotNil(t, data)
	assert.Equal(t, uint64(1), loop.FrameCount())

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderLoop_ResizeAppliesBeforeNextFrame(t *testing.T) {
	_, loop := newTestLoop()

	loop.Resize(320, 240)
	loop.RenderOnce()

	img, err := png.Decode(bytes.NewReader(loop.LatestPNG()))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRenderLoop_ResizeRejectsDegenerateSizes(t *testing.T) {
	_, loop := newTestLoop()

	loop.Resize(0, 100)
	loop.Resize(-5, -5)
	loop.RenderOnce()

	img, err := png.Decode(bytes.NewReader(loop.LatestPNG()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestRenderLoop_RunIsCancelable(t *testing.T) {
	_, loop := newTestLoop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	// Let it render at least the immediate first frame
	deadline := time.After(2 * time.Second)
	for loop.FrameCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("loop never rendered a frame")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
}

func TestRenderLoop_FrameReflectsStoreUpdates(t *testing.T) {
	store, loop := newTestLoop()

	loop.RenderOnce()
	empty := loop.LatestPNG()

	store.AppendNode(PoseGraphNode{Tf: Transform2d{XMeters: 0.2}})
	loop.RenderOnce()
	withNode := loop.LatestPNG()

	assert.NotEqual(t, empty, withNode, "frame must change when the graph changes")
}
