package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/techcore/gpu3d/internal/loop"
	"github.com/techcore/gpu3d/internal/viewer"
)

// fakeTarget is only touched from the loop goroutine.
type fakeTarget struct {
	state  viewer.State
	rotate bool
	wobble bool
	speed  float64
	fps    int
	calls  map[string]int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{state: viewer.StateRunning, rotate: true, wobble: true, calls: map[string]int{}}
}

func (f *fakeTarget) Stats() viewer.Stats {
	return viewer.Stats{
		FPS:           f.fps,
		State:         f.state,
		Running:       f.state == viewer.StateRunning,
		RotationSpeed: f.speed,
		Controls:      viewer.Controls{AutoRotate: f.rotate, Wobble: f.wobble},
	}
}

func (f *fakeTarget) Pause()                 { f.calls["pause"]++; f.state = viewer.StatePaused }
func (f *fakeTarget) Resume()                { f.calls["resume"]++; f.state = viewer.StateRunning }
func (f *fakeTarget) ResetView()             { f.calls["reset"]++; f.speed = viewer.DefaultRotationSpeed }
func (f *fakeTarget) ToggleAutoRotate() bool { f.rotate = !f.rotate; return f.rotate }
func (f *fakeTarget) ToggleWobble() bool     { f.wobble = !f.wobble; return f.wobble }
func (f *fakeTarget) SetSpeed(s float64)     { f.speed = s * viewer.MaxRotationSpeed }

func (f *fakeTarget) Reload() bool {
	if f.state == viewer.StateFailed {
		return false
	}
	f.calls["reload"]++
	return true
}

// pump drives the loop from a goroutine until the test ends.
func pump(t *testing.T, l *loop.Loop) {
	t.Helper()
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			l.Advance(time.Now())
			time.Sleep(time.Millisecond)
		}
	}()
	t.Cleanup(func() {
		close(stop)
		<-done
	})
}

func setupTest(t *testing.T, cfg Config) (*Server, *fakeTarget) {
	t.Helper()
	l := loop.New()
	pump(t, l)
	target := newFakeTarget()
	return New(cfg, target, l, nil), target
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeStats(t *testing.T, w *httptest.ResponseRecorder) viewer.Stats {
	t.Helper()
	var st viewer.Stats
	if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	return st
}

func TestHealthz(t *testing.T) {
	s, _ := setupTest(t, Config{})
	w := do(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("healthz: %d %s", w.Code, w.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	s, target := setupTest(t, Config{})
	target.fps = 58

	w := do(t, s, http.MethodGet, "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if st := decodeStats(t, w); st.FPS != 58 || st.State != viewer.StateRunning {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestActions(t *testing.T) {
	tests := []struct {
		path  string
		check func(viewer.Stats, *fakeTarget) bool
	}{
		{"/api/pause", func(st viewer.Stats, f *fakeTarget) bool {
			return st.State == viewer.StatePaused && f.calls["pause"] == 1
		}},
		{"/api/resume", func(st viewer.Stats, f *fakeTarget) bool {
			return st.Running && f.calls["resume"] == 1
		}},
		{"/api/reset", func(st viewer.Stats, f *fakeTarget) bool {
			return st.RotationSpeed == viewer.DefaultRotationSpeed && f.calls["reset"] == 1
		}},
		{"/api/rotate/toggle", func(st viewer.Stats, _ *fakeTarget) bool {
			return !st.Controls.AutoRotate
		}},
		{"/api/wobble/toggle", func(st viewer.Stats, _ *fakeTarget) bool {
			return !st.Controls.Wobble
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s, target := setupTest(t, Config{})
			w := do(t, s, http.MethodPost, tt.path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			if st := decodeStats(t, w); !tt.check(st, target) {
				t.Errorf("unexpected result %+v", st)
			}
		})
	}
}

func TestActionsRequirePost(t *testing.T) {
	s, target := setupTest(t, Config{})
	w := do(t, s, http.MethodGet, "/api/pause", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
	if target.calls["pause"] != 0 {
		t.Error("GET paused the viewer")
	}
}

func TestSpeed(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantSpeed float64
	}{
		{"half", `{"speed":0.5}`, http.StatusOK, 0.05},
		{"zero", `{"speed":0}`, http.StatusOK, 0},
		{"missing", `{}`, http.StatusBadRequest, 0},
		{"malformed", `{"speed":`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setupTest(t, Config{})
			w := do(t, s, http.MethodPost, "/api/speed", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if st := decodeStats(t, w); st.RotationSpeed != tt.wantSpeed {
				t.Errorf("speed = %v, want %v", st.RotationSpeed, tt.wantSpeed)
			}
		})
	}
}

func TestReload(t *testing.T) {
	s, target := setupTest(t, Config{})
	if w := do(t, s, http.MethodPost, "/api/reload", ""); w.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", w.Code)
	}

	failed, ft := setupTest(t, Config{})
	ft.state = viewer.StateFailed
	w := do(t, failed, http.MethodPost, "/api/reload", "")
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), "failed") {
		t.Errorf("expected 409 mentioning the state, got %d %s", w.Code, w.Body.String())
	}
	if target.calls["reload"] != 1 || ft.calls["reload"] != 0 {
		t.Error("unexpected reload calls")
	}
}

func TestCallTimesOutWithoutLoop(t *testing.T) {
	// Nothing advances this loop.
	s := New(Config{CallTimeout: 20 * time.Millisecond}, newFakeTarget(), loop.New(), nil)
	w := do(t, s, http.MethodGet, "/api/stats", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestTimedOutCallNeverRuns(t *testing.T) {
	l := loop.New()
	target := newFakeTarget()
	s := New(Config{CallTimeout: 20 * time.Millisecond}, target, l, nil)

	w := do(t, s, http.MethodPost, "/api/pause", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	// The loop wakes up after the client gave up.
	l.Advance(time.Now())
	if target.calls["pause"] != 0 || target.state != viewer.StateRunning {
		t.Errorf("abandoned pause ran: calls %v state %v", target.calls, target.state)
	}
}

func TestShutdownStopsStart(t *testing.T) {
	s := New(Config{Addr: "127.0.0.1:0"}, newFakeTarget(), loop.New(), nil)

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestStatsStream(t *testing.T) {
	s, target := setupTest(t, Config{StatsInterval: 20 * time.Millisecond})
	target.fps = 42

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/stats"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}

	var hello streamMessage
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != "hello" || hello.ID == "" {
		t.Fatalf("unexpected hello %+v", hello)
	}

	for i := 0; i < 2; i++ {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read stats: %v", err)
		}
		if msg.Type != "stats" || msg.Stats == nil || msg.Stats.FPS != 42 {
			t.Errorf("unexpected message %+v", msg)
		}
	}
	if s.Subscribers() != 1 {
		t.Errorf("expected one subscriber, got %d", s.Subscribers())
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for s.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber not removed after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
