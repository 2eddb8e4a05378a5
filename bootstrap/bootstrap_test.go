package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/crudify/component"
	"github.com/kbukum/crudify/config"
	"github.com/kbukum/crudify/di"
	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/module"
	"github.com/kbukum/crudify/router"
	"github.com/kbukum/crudify/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig is a minimal config for testing that satisfies the Config interface.
type testConfig struct {
	config.ServiceConfig
	Server server.Config
}

func (c *testConfig) GetServerConfig() *server.Config { return &c.Server }

// mockComponent implements component.Component for testing.
type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	started  bool
	stopped  bool
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	m.started = true
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	m.stopped = true
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) component.Health {
	return m.health
}

// conn is a disposable value provided by the test module.
type conn struct {
	mu     sync.Mutex
	closed bool
}

func (c *conn) Dispose(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var connKey = di.NewKey[*conn]("Conn")

type pingController struct{}

var pingClass = di.Injectable("Ping", nil, func([]any) (any, error) {
	return &pingController{}, nil
}, di.WithAutoDispose(false))

func testModule(c *conn) *module.Module {
	return &module.Module{
		Name: "root",
		Providers: []di.Provider{
			di.UseFactory(connKey, nil, func(...any) (any, error) { return c, nil }, di.WithAutoDispose(true)),
		},
		Controllers: []*router.Controller{{
			Path:  "/ping",
			Class: pingClass,
			Routes: []router.Route{
				router.Get("/", "ping", []di.Token{connKey}, func(any, []any) (any, error) {
					return "pong", nil
				}),
			},
		}},
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func newTestConfig(t *testing.T, name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
		Server: server.Config{Host: "127.0.0.1", Port: freePort(t), ShutdownTimeout: 1},
	}
}

func newTestApp(t *testing.T, c *conn, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop()), WithKillTimeout(0)}, opts...)
	app, err := NewApp(newTestConfig(t, "test-service", "1.2.3"), testModule(c), opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, &conn{})
	if app.Name != "test-service" {
		t.Errorf("expected name test-service, got %s", app.Name)
	}
	if app.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", app.Version)
	}
	if app.Modules == nil || app.Server == nil || app.Telemetry == nil {
		t.Fatal("expected modules, server and telemetry to be wired")
	}
	for _, name := range []string{"modules", "http-server"} {
		if app.Components.Get(name) == nil {
			t.Errorf("expected component %s registered", name)
		}
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default graceful timeout 15s, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testConfig)
		root   *module.Module
	}{
		{"missing name", func(c *testConfig) { c.Name = "" }, testModule(&conn{})},
		{"bad environment", func(c *testConfig) { c.Environment = "qa" }, testModule(&conn{})},
		{"bad port", func(c *testConfig) { c.Server.Port = 70000 }, testModule(&conn{})},
		{"bad module", func(*testConfig) {}, &module.Module{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t, "svc", "1.0.0")
			tt.mutate(cfg)
			if _, err := NewApp(cfg, tt.root, WithLogger(logger.Nop())); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewAppRouteConflict(t *testing.T) {
	dup := &module.Module{
		Name: "dup",
		Controllers: []*router.Controller{{
			Path:   "/info",
			Class:  pingClass,
			Routes: []router.Route{router.Get("/", "info", nil, func(any, []any) (any, error) { return "x", nil })},
		}},
	}
	_, err := NewApp(newTestConfig(t, "svc", "1.0.0"), dup, WithLogger(logger.Nop()))
	if err == nil || !strings.Contains(err.Error(), "mounting routes") {
		t.Fatalf("expected mounting error, got %v", err)
	}
}

func TestNewAppServesModuleRoutes(t *testing.T) {
	app := newTestApp(t, &conn{})
	defer func() { _ = app.Modules.Dispose(context.Background()) }()

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/ping", http.StatusOK, "pong"},
		{"/info", http.StatusOK, `"service":"test-service"`},
		{"/nowhere", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.Server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("expected body containing %q, got %q", tt.contains, w.Body.String())
			}
		})
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app := newTestApp(t, &conn{}, WithGracefulTimeout(30*time.Second))
	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app := newTestApp(t, &conn{})
	if err := app.RegisterComponent(&mockComponent{name: "modules"}); err == nil {
		t.Error("expected error for duplicate component registration")
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	c := &conn{}
	app := newTestApp(t, c)

	var order []string
	app.OnStart(func(ctx context.Context) error { order = append(order, "start"); return nil })
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(ctx context.Context) error { order = append(order, "stop"); return nil })

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		resp, err := http.Get("http://" + app.Server.Addr() + "/ping")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if string(body) != "pong" {
			return fmt.Errorf("expected pong, got %q", body)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "start,configure,ready,task,stop"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if !c.isClosed() {
		t.Error("expected module values disposed after shutdown")
	}
	if !app.Modules.Injector().Disposed() {
		t.Error("expected root module injector disposed")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t, &conn{})
	want := errors.New("task failed")
	err := app.RunTask(context.Background(), func(ctx context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestRunTaskHookErrors(t *testing.T) {
	tests := []struct {
		name    string
		install func(app *App[*testConfig])
		want    string
	}{
		{"start", func(app *App[*testConfig]) {
			app.OnStart(func(context.Context) error { return errors.New("boom") })
		}, "start hook 0: boom"},
		{"configure", func(app *App[*testConfig]) {
			app.OnConfigure(func(context.Context, *App[*testConfig]) error { return errors.New("boom") })
		}, "configuration failed"},
		{"ready", func(app *App[*testConfig]) {
			app.OnReady(func(context.Context) error { return errors.New("boom") })
		}, "ready hook 0: boom"},
		{"stop", func(app *App[*testConfig]) {
			app.OnStop(func(context.Context) error { return errors.New("boom") })
		}, "stop hook 0: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &conn{})
			tt.install(app)
			taskRan := false
			err := app.RunTask(context.Background(), func(context.Context) error {
				taskRan = true
				return nil
			})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
			if tt.name == "stop" && !taskRan {
				t.Error("expected task to run before stop hooks")
			}
			if !app.Modules.Injector().Disposed() {
				t.Error("expected modules disposed after failure")
			}
		})
	}
}

func TestRunTaskComponentStartError(t *testing.T) {
	app := newTestApp(t, &conn{})
	broken := &mockComponent{name: "broken", startErr: errors.New("no db")}
	if err := app.RegisterComponent(broken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := app.RunTask(context.Background(), func(context.Context) error {
		t.Error("task must not run")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "initialization failed") {
		t.Fatalf("expected initialization error, got %v", err)
	}
	if broken.stopped {
		t.Error("expected failed component not to be stopped")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t, &conn{})
	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if app.Server.Started() {
		if _, err := http.Get("http://" + app.Server.Addr() + "/info"); err == nil {
			t.Error("expected server closed after Run")
		}
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		health  component.HealthStatus
		wantErr bool
	}{
		{"healthy", component.StatusHealthy, false},
		{"degraded", component.StatusDegraded, true},
		{"unhealthy", component.StatusUnhealthy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &conn{})
			_ = app.Components.StartAll(context.Background())
			defer func() { _ = app.Components.StopAll(context.Background()) }()
			c := &mockComponent{name: "db", health: component.Health{Name: "db", Status: tt.health, Message: "check"}}
			if err := app.RegisterComponent(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !strings.Contains(err.Error(), "db="+string(tt.health)+"(check)") {
				t.Errorf("expected component detail in %q", err.Error())
			}
		})
	}
}

func TestHookErrorStopsExecution(t *testing.T) {
	secondCalled := false
	hooks := []Hook{
		func(ctx context.Context) error { return fmt.Errorf("fail") },
		func(ctx context.Context) error { secondCalled = true; return nil },
	}
	err := runHooks(context.Background(), PhaseReady, hooks)
	if err == nil || err.Error() != "ready hook 0: fail" {
		t.Errorf("expected ready hook 0 failure, got %v", err)
	}
	if secondCalled {
		t.Error("expected second hook not to be called after first fails")
	}
}
