package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period after the last edit before a note
// is written.
const DefaultAutoSaveDelay = 1500 * time.Millisecond

// pendingEdit is the latest unsaved content for one title.
type pendingEdit struct {
	content string
	seq     uint64
	timer   *time.Timer
}

// AutoSaver coalesces rapid edits into a single save per note. Every Edit
// restarts a one-shot timer for its title; when the timer fires the most
// recent content is written with Notes.CreateOrUpdate. Saves for one title
// never reorder: an older edit that loses a race with a newer one is dropped.
type AutoSaver struct {
	notes  *Notes
	delay  time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	idle      *sync.Cond
	pending   map[string]*pendingEdit
	saveLocks map[string]*sync.Mutex
	lastSaved map[string]uint64
	seq       uint64
	inflight  int
	errs      []error
	closed    bool
}

func newAutoSaver(notes *Notes, delay time.Duration, logger *slog.Logger) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	a := &AutoSaver{
		notes:     notes,
		delay:     delay,
		logger:    logger,
		pending:   make(map[string]*pendingEdit),
		saveLocks: make(map[string]*sync.Mutex),
		lastSaved: make(map[string]uint64),
	}
	a.idle = sync.NewCond(&a.mu)
	return a
}

// Edit records content as the latest text of title and (re)starts its timer.
func (a *AutoSaver) Edit(title, content string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrSessionClosed
	}

	a.seq++
	p, ok := a.pending[title]
	if !ok {
		p = &pendingEdit{}
		a.pending[title] = p
	}
	p.content = content
	p.seq = a.seq

	if p.timer != nil {
		p.timer.Stop()
	}
	seq := p.seq
	p.timer = time.AfterFunc(a.delay, func() { a.fire(title, seq) })
	return nil
}

// Pending reports whether title has an edit that has not been written yet.
func (a *AutoSaver) Pending(title string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.pending[title]
	return ok
}

// Flush synchronously writes every pending edit and waits for saves already
// started by timers. It returns the errors of all saves since the previous
// Flush, joined.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	batch := a.pending
	a.pending = make(map[string]*pendingEdit)
	for _, p := range batch {
		if p.timer != nil {
			p.timer.Stop()
		}
	}
	a.inflight += len(batch)
	a.mu.Unlock()

	for title, p := range batch {
		a.save(ctx, title, p.content, p.seq)
	}

	a.mu.Lock()
	for a.inflight > 0 {
		a.idle.Wait()
	}
	errs := a.errs
	a.errs = nil
	a.mu.Unlock()

	return errors.Join(errs...)
}

// Close flushes pending edits and rejects further Edit calls.
func (a *AutoSaver) Close(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return a.Flush(ctx)
}

// fire runs on the timer goroutine. A stale seq means the edit was replaced
// or flushed after the timer was armed.
func (a *AutoSaver) fire(title string, seq uint64) {
	a.mu.Lock()
	p, ok := a.pending[title]
	if !ok || p.seq != seq {
		a.mu.Unlock()
		return
	}
	delete(a.pending, title)
	a.inflight++
	a.mu.Unlock()

	a.save(context.Background(), title, p.content, seq)
}

func (a *AutoSaver) save(ctx context.Context, title, content string, seq uint64) {
	lock := a.titleLock(title)
	lock.Lock()

	var err error
	if a.isStale(title, seq) {
		a.logger.Debug("autosave skipped stale edit", "title", title)
	} else {
		err = a.notes.CreateOrUpdate(ctx, title, content)
		if err == nil {
			a.markSaved(title, seq)
		}
	}
	lock.Unlock()

	a.mu.Lock()
	if err != nil {
		a.logger.Error("autosave failed", "title", title, "error", err)
		a.errs = append(a.errs, err)
	}
	a.inflight--
	if a.inflight == 0 {
		a.idle.Broadcast()
	}
	a.mu.Unlock()
}

func (a *AutoSaver) titleLock(title string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.saveLocks[title]
	if !ok {
		l = &sync.Mutex{}
		a.saveLocks[title] = l
	}
	return l
}

func (a *AutoSaver) isStale(title string, seq uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved[title] > seq
}

func (a *AutoSaver) markSaved(title string, seq uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq > a.lastSaved[title] {
		a.lastSaved[title] = seq
	}
}
