package module

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/crudify/di"
	apperrors "github.com/kbukum/crudify/errors"
	"github.com/kbukum/crudify/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// closer records the order in which values are disposed.
type closer struct {
	name string
	log  *events
}

func (c *closer) Dispose(context.Context) error {
	c.log.add(c.name)
	return nil
}

type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, s)
}

func (e *events) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return strings.Join(e.list, ",")
}

var (
	dbKey      = di.NewKey[*closer]("DB")
	repoKey    = di.NewKey[*closer]("Repo")
	secretKey  = di.NewKey[string]("Secret")
	serviceKey = di.NewKey[string]("Service")
)

func closerFactory(token di.Token, name string, deps []di.Token, log *events) di.Provider {
	return di.UseFactory(token, deps, func(...any) (any, error) {
		return &closer{name: name, log: log}, nil
	}, di.WithAutoDispose(true))
}

func newStorage(log *events) *Module {
	return &Module{
		Name: "storage",
		Providers: []di.Provider{
			closerFactory(dbKey, "db", nil, log),
			di.UseValue(secretKey, "s3cr3t"),
		},
		Exports: []di.Token{dbKey},
	}
}

func TestNewApp_ImportsAndExports(t *testing.T) {
	log := &events{}
	storage := newStorage(log)
	repos := &Module{
		Name:      "repos",
		Imports:   []*Module{storage},
		Providers: []di.Provider{closerFactory(repoKey, "repo", []di.Token{dbKey}, log)},
		Exports:   []di.Token{repoKey, dbKey},
	}
	root := &Module{Name: "root", Imports: []*Module{repos}}

	app, err := NewApp(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo, err := di.Get(app.Injector(), repoKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db, err := app.Get(dbKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	storageCtx, ok := app.Context(storage)
	if !ok {
		t.Fatal("expected storage context")
	}
	own, err := di.Get(storageCtx.Injector(), dbKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != own {
		t.Error("expected re-exported DB to be the storage module's instance")
	}
	if repo.name != "repo" {
		t.Errorf("expected repo, got %q", repo.name)
	}

	if _, err := app.Get(secretKey); !stderrors.Is(err, di.ErrNoFactory) {
		t.Errorf("expected unexported token hidden, got %v", err)
	}

	if err := app.Dispose(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := log.String(); got != "repo,db" {
		t.Errorf("expected repo,db disposal order, got %s", got)
	}
}

func TestNewApp_SharedImportBuiltOnce(t *testing.T) {
	log := &events{}
	storage := newStorage(log)
	a := &Module{Name: "a", Imports: []*Module{storage}, Exports: []di.Token{dbKey}}
	b := &Module{Name: "b", Imports: []*Module{storage}}
	root := &Module{Name: "root", Imports: []*Module{a, b}}

	app, err := NewApp(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	actx, _ := app.Context(a)
	bctx, _ := app.Context(b)
	fromA, err := di.Get(actx.Injector(), dbKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromB, err := di.Get(bctx.Injector(), dbKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromA != fromB {
		t.Error("expected one DB shared by both importers")
	}
	if err := app.Dispose(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := log.String(); got != "db" {
		t.Errorf("expected db disposed once, got %s", got)
	}
}

func TestNewApp_CircularImports(t *testing.T) {
	a := &Module{Name: "a"}
	b := &Module{Name: "b", Imports: []*Module{a}}
	a.Imports = []*Module{b}

	_, err := NewApp(a)
	if !stderrors.Is(err, di.ErrCircularDependency) {
		t.Fatalf("expected circular dependency, got %v", err)
	}
}

func TestNewApp_InvalidExport(t *testing.T) {
	log := &events{}
	storage := newStorage(log)
	root := &Module{
		Name:    "root",
		Imports: []*Module{storage},
		Exports: []di.Token{secretKey},
	}
	_, err := NewApp(root)
	if !stderrors.Is(err, di.ErrInvalidProvider) {
		t.Fatalf("expected invalid provider, got %v", err)
	}
	if got := log.String(); got != "" {
		t.Errorf("expected nothing created, got %s", got)
	}
}

func TestNewApp_Validation(t *testing.T) {
	tests := []struct {
		name string
		root *Module
		want error
	}{
		{"missing name", &Module{}, apperrors.Sentinel(apperrors.ErrCodeInvalidInput)},
		{"duplicate provider", &Module{
			Name:      "dup",
			Providers: []di.Provider{di.UseValue(secretKey, "a"), di.UseValue(secretKey, "b")},
		}, di.ErrDuplicateProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewApp(tt.root)
			if !stderrors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if _, err := NewApp(nil); err == nil {
		t.Error("expected error for nil root")
	}
}

type hello struct{ service string }

var helloClass = di.Injectable("Hello", []di.Token{serviceKey}, func(args []any) (any, error) {
	return &hello{service: args[0].(string)}, nil
}, di.WithAutoDispose(false))

func TestNewApp_RoutersAndRequestProviders(t *testing.T) {
	util := &Module{
		Name: "util",
		RequestProviders: []di.Provider{
			di.UseFactory(serviceKey, []di.Token{router.Method}, func(args ...any) (any, error) {
				return "service for " + args[0].(string), nil
			}),
		},
	}
	root := &Module{
		Name:      "root",
		Imports:   []*Module{util},
		Providers: []di.Provider{di.UseValue(serviceKey, "plain service")},
		Controllers: []*router.Controller{{
			Path:  "/hello",
			Class: helloClass,
			Routes: []router.Route{
				router.Get("/", "index", nil, func(recv any, _ []any) (any, error) {
					return recv.(*hello).service, nil
				}),
			},
		}},
	}

	app, err := NewApp(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = app.Dispose(context.Background()) }()

	routers := app.Routers()
	if len(routers) != 1 {
		t.Fatalf("expected 1 router, got %d", len(routers))
	}
	engine := gin.New()
	if err := routers[0].Register(engine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello", nil))
	if w.Body.String() != "service for GET" {
		t.Errorf("expected request provider in router scope, got %q", w.Body.String())
	}

	svc, err := app.Get(serviceKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc != "plain service" {
		t.Errorf("expected private provider outside requests, got %v", svc)
	}
}

func TestContext_DisposeOrder(t *testing.T) {
	root := &Module{
		Name:      "root",
		Providers: []di.Provider{di.UseValue(serviceKey, "svc")},
		Exports:   []di.Token{serviceKey},
		Controllers: []*router.Controller{{
			Class:  helloClass,
			Routes: []router.Route{router.Get("/", "index", nil, func(any, []any) (any, error) { return nil, nil })},
		}},
	}
	app, err := NewApp(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, _ := app.Context(root)
	if err := app.Dispose(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, inj := range map[string]*di.Injector{
		"router":   ctx.Router().Injector(),
		"exported": ctx.Exported(),
		"private":  ctx.Injector(),
	} {
		if !inj.Disposed() {
			t.Errorf("expected %s scope disposed", name)
		}
	}
}

func TestNewApp_ConcurrentRequestsShareImport(t *testing.T) {
	log := &events{}
	storage := &Module{
		Name: "storage",
		Providers: []di.Provider{
			di.UseFactory(dbKey, nil, func(...any) (any, error) {
				time.Sleep(5 * time.Millisecond)
				return &closer{name: "db", log: log}, nil
			}, di.WithAutoDispose(true)),
		},
		Exports: []di.Token{dbKey},
	}
	root := &Module{
		Name:    "root",
		Imports: []*Module{storage},
		Controllers: []*router.Controller{{
			Path:  "/db",
			Class: di.Injectable("DBController", nil, func([]any) (any, error) { return &hello{}, nil }, di.WithAutoDispose(false)),
			Routes: []router.Route{
				router.Get("/", "show", []di.Token{dbKey}, func(_ any, args []any) (any, error) {
					return args[0].(*closer).name, nil
				}),
			},
		}},
	}

	app, err := NewApp(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine := gin.New()
	if err := app.Routers()[0].Register(engine); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const requests = 16
	var wg sync.WaitGroup
	bodies := make([]string, requests)
	for n := 0; n < requests; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/db", nil))
			bodies[n] = w.Body.String()
		}()
	}
	wg.Wait()

	for n, body := range bodies {
		if body != "db" {
			t.Errorf("request %d: expected db, got %q", n, body)
		}
	}
	if err := app.Dispose(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := log.String(); got != "db" {
		t.Errorf("expected db created and disposed once, got %s", got)
	}
}
