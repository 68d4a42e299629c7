package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/xavierbot/groundstation/teleop"
)

// keyEvent is the body of POST /key: a key name as reported by the browser
// and whether it went down or up.
type keyEvent struct {
	Key  string `json:"key"`
	Type string `json:"type"` // "down" or "up"
}

// viewportEvent is the body of POST /viewport
type viewportEvent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(app *App) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status    string             `json:"status"`
			Timestamp time.Time          `json:"timestamp"`
			Robot     teleop.RobotStatus `json:"robot"`
			NodeCount int                `json:"nodeCount"`
			Frames    uint64             `json:"frames"`
		}{
			Status:    "ok",
			Timestamp: time.Now(),
			Robot:     app.Store.Status(),
			NodeCount: app.Store.NodeCount(),
			Frames:    app.Loop.FrameCount(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Latest live frame from the render loop
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, r *http.Request) {
		frame := app.Loop.LatestPNG()
		if frame == nil {
			http.Error(w, "No frame rendered yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(frame); err != nil {
			log.Printf("Error writing frame PNG: %v", err)
		}
	})

	// Vector snapshot endpoints render the current graph on demand, fitted to
	// the data rather than the live viewport
	mux.HandleFunc("/map.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := app.snapshotRenderer().RenderToSVG(w); err != nil {
			log.Printf("Error encoding map SVG: %v", err)
		}
	})

	mux.HandleFunc("/map.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := app.snapshotRenderer().RenderToPNG(w); err != nil {
			log.Printf("Error encoding map PNG: %v", err)
		}
	})

	// Raw state for non-image consumers
	mux.HandleFunc("/state.json", func(w http.ResponseWriter, r *http.Request) {
		pose, hasPose, nodes := app.Store.Snapshot()
		state := struct {
			Pose    *teleop.Transform2d    `json:"pose,omitempty"`
			Nodes   []teleop.PoseGraphNode `json:"nodes"`
			Status  teleop.RobotStatus     `json:"status"`
			Command teleop.Twist2d         `json:"command"`
		}{
			Nodes:   nodes,
			Status:  app.Store.Status(),
			Command: app.Commander.Command(),
		}
		if hasPose {
			state.Pose = &pose
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state); err != nil {
			log.Printf("Error encoding state: %v", err)
		}
	})

	// Key transitions from the dashboard drive the robot
	mux.HandleFunc("/key", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var ev keyEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "Invalid key event", http.StatusBadRequest)
			return
		}
		dir, ok := teleop.MapKeyName(ev.Key)
		if !ok {
			// Unbound keys are not an error, the browser sends everything
			w.WriteHeader(http.StatusNoContent)
			return
		}
		switch ev.Type {
		case "down":
			app.Commander.KeyDown(dir)
		case "up":
			app.Commander.KeyUp(dir)
		default:
			http.Error(w, "Type must be down or up", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Viewport resizes apply before the next rendered frame
	mux.HandleFunc("/viewport", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var ev viewportEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "Invalid viewport event", http.StatusBadRequest)
			return
		}
		if ev.Width <= 0 || ev.Height <= 0 {
			http.Error(w, "Viewport must be positive", http.StatusBadRequest)
			return
		}
		app.Loop.Resize(ev.Width, ev.Height)
		w.WriteHeader(http.StatusNoContent)
	})

	// Waypoint paths are accepted but not yet forwarded to the robot
	mux.HandleFunc("/path", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		http.Error(w, "Path following not implemented", http.StatusNotImplemented)
	})

	// Default route serves the dashboard page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = fmt.Fprint(w, dashboardHTML)
	})

	// Wrap mux with logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		mux.ServeHTTP(w, r)
	})
}

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>groundstation</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
html,body{width:100%;height:100%;overflow:hidden;background:#14141e}
img{display:block;width:100vw;height:100vh;object-fit:contain}
</style>
</head>
<body>
<img id="frame" src="/frame.png" alt="Live Map">
<script>
const frame = document.getElementById('frame');
setInterval(() => { frame.src = '/frame.png?t=' + Date.now(); }, 100);

function sendKey(type, ev) {
  if (ev.repeat) return;
  fetch('/key', {method: 'POST', body: JSON.stringify({key: ev.key, type})});
}
window.addEventListener('keydown', ev => sendKey('down', ev));
window.addEventListener('keyup', ev => sendKey('up', ev));
window.addEventListener('blur', () => {
  for (const key of ['w','a','s','d']) {
    fetch('/key', {method: 'POST', body: JSON.stringify({key, type: 'up'})});
  }
});

function sendViewport() {
  fetch('/viewport', {method: 'POST',
    body: JSON.stringify({width: window.innerWidth, height: window.innerHeight})});
}
window.addEventListener('resize', sendViewport);
sendViewport();
</script>
</body>
</html>`
