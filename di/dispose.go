package di

import (
	"context"
	stderrors "errors"
	"sync"

	apperrors "github.com/kbukum/crudify/errors"
	"github.com/kbukum/crudify/logger"
)

// Dispose tears the injector down. Dispose listeners run first, all of them
// concurrently; the injector is then marked disposed, its cache dropped, and
// the values it owns are released one at a time, most recently created
// first. Every listener and release is attempted; failures are returned
// together as one DISPOSAL_FAILED error whose cause joins them all.
//
// Disposing twice, or while a Get on this injector is still running, fails.
func (i *Injector) Dispose(ctx context.Context) error {
	s := i.s
	t := s.tree

	t.mu.Lock()
	if s.disposed.Load() {
		t.mu.Unlock()
		return disposedInjector(s.name, "dispose")
	}
	if s.active > 0 || (i.res != nil && len(i.res.inflight) > 0) {
		t.mu.Unlock()
		return apperrors.ResolutionInProgress(s.name, s.resolvingLocked(i.res))
	}
	listeners := append([]*listener(nil), s.listeners...)
	t.mu.Unlock()

	errs := runListeners(ctx, listeners)

	t.mu.Lock()
	s.disposed.Store(true)
	handles := s.handles
	s.handles = nil
	s.listeners = nil
	s.instances = make(map[Token]*record)
	detach := s.detach
	t.mu.Unlock()

	if detach != nil {
		detach()
	}

	for idx := len(handles) - 1; idx >= 0; idx-- {
		h := handles[idx]
		err := h.value.Dispose(ctx)
		if err != nil {
			errs = append(errs, err)
			t.log.Error("Instance disposal failed", logger.InstanceFields(s.name, h.token.String(), err))
		} else {
			t.log.Debug("Instance disposed", logger.InstanceFields(s.name, h.token.String(), nil))
		}
		if t.observer != nil {
			t.observer.InstanceDisposed(s.name, h.token, err)
		}
	}

	if len(errs) > 0 {
		return apperrors.DisposalFailed(s.name, len(errs), stderrors.Join(errs...))
	}
	t.log.Debug("Injector disposed", map[string]interface{}{
		logger.FieldScope: s.name,
		"released":        len(handles),
	})
	return nil
}

func runListeners(ctx context.Context, listeners []*listener) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, l := range listeners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs
}

// resolvingLocked names the tokens being created, for error messages.
// Requires t.mu.
func (s *scope) resolvingLocked(r *resolution) []string {
	var names []string
	if r != nil {
		for _, t := range r.path {
			names = append(names, t.String())
		}
	}
	if len(names) == 0 {
		names = append(names, "<concurrent call>")
	}
	return names
}

// release disposes a value that lost the race to be cached or whose owner
// was disposed while it was being created.
func (t *tree) release(scope string, token Token, d Disposable) {
	if d == nil {
		return
	}
	err := d.Dispose(context.Background())
	if err != nil {
		t.log.Warn("Releasing uncached instance failed", logger.InstanceFields(scope, token.String(), err))
	}
	if t.observer != nil {
		t.observer.InstanceDisposed(scope, token, err)
	}
}
