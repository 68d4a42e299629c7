package teleop

import (
	"bytes"
	"context"
	"image/png"
	"log"
	"sync"
	"time"
)

// RenderLoop repeatedly snapshots the store, renders a frame, and swaps the
// encoded PNG into a latest-frame slot for the HTTP layer. The loop runs on
// its own goroutine at a fixed frame rate and stops deterministically when its
// context is canceled; it never blocks on the network and never mutates the
// store.
type RenderLoop struct {
	store    *GraphStore
	renderer *FrameRenderer
	interval time.Duration

	mu       sync.RWMutex
	latest   []byte // encoded PNG of the most recent frame
	frames   uint64
	resizeTo *frameSize // pending resize, applied before the next frame
}

type frameSize struct {
	width, height int
}

// NewRenderLoop creates a render loop at the given frames-per-second rate.
func NewRenderLoop(store *GraphStore, renderer *FrameRenderer, fps float64) *RenderLoop {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &RenderLoop{
		store:    store,
		renderer: renderer,
		interval: time.Duration(float64(time.Second) / fps),
	}
}

// Run renders frames until the context is canceled. The first frame is drawn
// immediately so /frame.png is never empty once the service is up.
func (l *RenderLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.renderOnce()
	for {
		select {
		case <-ctx.Done():
			log.Println("Render loop stopped")
			return
		case <-ticker.C:
			l.renderOnce()
		}
	}
}

// Resize requests a new frame size. The projector recenter point is re-derived
// together with the size change, before the next frame is drawn, so no frame
// ever uses a stale center.
func (l *RenderLoop) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resizeTo = &frameSize{width: width, height: height}
}

// LatestPNG returns the most recently rendered frame, or nil before the first
// frame completes.
func (l *RenderLoop) LatestPNG() []byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.latest
}

// FrameCount returns the number of frames rendered so far.
func (l *RenderLoop) FrameCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frames
}

// RenderOnce produces a single frame outside the ticker schedule. Used for the
// first frame and by tests; the running loop calls it on every tick.
func (l *RenderLoop) RenderOnce() {
	l.renderOnce()
}

func (l *RenderLoop) renderOnce() {
	l.mu.Lock()
	if l.resizeTo != nil {
		l.renderer.Resize(l.resizeTo.width, l.resizeTo.height)
		l.resizeTo = nil
	}
	l.mu.Unlock()

	livePose, hasPose, nodes := l.store.Snapshot()
	img := l.renderer.Render(livePose, hasPose, nodes, l.store.Status())

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("Error encoding frame PNG: %v", err)
		return
	}

	l.mu.Lock()
	l.latest = buf.Bytes()
	l.frames++
	l.mu.Unlock()
}
