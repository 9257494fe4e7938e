package play

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Roma7-7-7/readyword/internal/game"
)

const subscriberBuffer = 16

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrForbidden       = errors.New("session belongs to another user")
	ErrSessionActive   = errors.New("session is still active")
)

type (
	// OutcomeSink receives the result of every session that ends. Calls are
	// made on their own goroutine, never while a session lock is held.
	OutcomeSink interface {
		Finished(ctx context.Context, f Finished)
		Abandoned(ctx context.Context, a Abandoned)
	}

	Finished struct {
		SessionID string
		UserID    int64
		WordID    int64
		Outcome   game.Outcome
	}

	Abandoned struct {
		SessionID   string
		UserID      int64
		PointsSpent int
	}

	// TickerFunc creates the clock that drives session countdowns. The
	// returned func releases it.
	TickerFunc func(d time.Duration) (<-chan time.Time, func())

	Option func(m *Manager)

	Manager struct {
		mu       sync.Mutex
		sessions map[string]*live
		byUser   map[int64]string

		sink      OutcomeSink
		rng       game.Rand
		newTicker TickerFunc
		now       func() time.Time
		log       *slog.Logger

		wg sync.WaitGroup

		// pending holds one channel per outcome still being written, closed
		// once the sink returns. Guarded by pendingMu, never taken with mu.
		pendingMu sync.Mutex
		pending   map[int64][]chan struct{}
	}

	live struct {
		mu sync.Mutex

		id     string
		userID int64
		wordID int64

		session    game.Session
		lastEffect game.Effect
		startedAt  time.Time
		finishedAt time.Time
		fact       string

		done     chan struct{}
		stopOnce sync.Once
		gone     bool

		subs    map[int]chan Snapshot
		nextSub int
	}
)

func WithRand(rng game.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

func WithTicker(fn TickerFunc) Option {
	return func(m *Manager) { m.newTicker = fn }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(sink OutcomeSink, log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		sessions:  make(map[string]*live),
		byUser:    make(map[int64]string),
		pending:   make(map[int64][]chan struct{}),
		sink:      sink,
		rng:       game.DefaultRand,
		newTicker: systemTicker,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Start registers a new live session for the user and starts its countdown.
// A session the user already had is discarded.
func (m *Manager) Start(ctx context.Context, userID, wordID int64, params game.StartParams) (Snapshot, error) {
	session, err := game.Start(params)
	if err != nil {
		return Snapshot{}, err
	}

	l := &live{
		id:         ulid.Make().String(),
		userID:     userID,
		wordID:     wordID,
		session:    session,
		lastEffect: game.Effect{Kind: game.EffectIgnored},
		startedAt:  m.now().UTC(),
		done:       make(chan struct{}),
		subs:       make(map[int]chan Snapshot),
	}

	m.mu.Lock()
	var previous *live
	if id, ok := m.byUser[userID]; ok {
		previous = m.sessions[id]
		delete(m.sessions, id)
	}
	m.sessions[l.id] = l
	m.byUser[userID] = l.id
	m.mu.Unlock()

	if previous != nil {
		m.discard(ctx, previous, true)
	}

	go m.countdown(l)

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot(), nil
}

// DiscardCurrent drops the user's current session, if any, reports the hint
// spend of an unfinished one and waits until every outcome of the user has
// reached the sink.
func (m *Manager) DiscardCurrent(ctx context.Context, userID int64) error {
	m.mu.Lock()
	id, ok := m.byUser[userID]
	var l *live
	if ok {
		l = m.sessions[id]
		delete(m.sessions, id)
		delete(m.byUser, userID)
	}
	m.mu.Unlock()

	if l != nil {
		m.discard(ctx, l, false)
	}
	return m.Settle(ctx, userID)
}

// Settle blocks until the outcomes of the user's finished sessions have been
// handed to the sink and the sink has returned.
func (m *Manager) Settle(ctx context.Context, userID int64) error {
	m.pendingMu.Lock()
	pending := slices.Clone(m.pending[userID])
	m.pendingMu.Unlock()

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *Manager) Discard(ctx context.Context, userID int64, id string) error {
	m.mu.Lock()
	l, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	if l.userID != userID {
		m.mu.Unlock()
		return ErrForbidden
	}
	delete(m.sessions, id)
	if m.byUser[userID] == id {
		delete(m.byUser, userID)
	}
	m.mu.Unlock()

	m.discard(ctx, l, true)
	return nil
}

func (m *Manager) discard(ctx context.Context, l *live, async bool) {
	l.mu.Lock()
	l.gone = true
	l.stop()
	l.closeSubs()
	var abandoned *Abandoned
	if l.session.Active() && l.session.PointsSpent() > 0 {
		abandoned = &Abandoned{SessionID: l.id, UserID: l.userID, PointsSpent: l.session.PointsSpent()}
	}
	l.mu.Unlock()

	if abandoned == nil {
		return
	}
	if !async {
		m.sink.Abandoned(ctx, *abandoned)
		return
	}
	m.dispatch(ctx, l.userID, func(ctx context.Context) { m.sink.Abandoned(ctx, *abandoned) })
}

func (m *Manager) Get(userID int64, id string) (Snapshot, error) {
	l, err := m.lookup(userID, id)
	if err != nil {
		return Snapshot{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot(), nil
}

func (m *Manager) Current(userID int64) (Snapshot, error) {
	m.mu.Lock()
	id, ok := m.byUser[userID]
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	return m.Get(userID, id)
}

func (m *Manager) Guess(ctx context.Context, userID int64, id string, letter rune) (Snapshot, error) {
	return m.mutate(ctx, userID, id, func(s game.Session) (game.Session, game.Effect, error) {
		next, effect := s.GuessLetter(letter)
		return next, effect, nil
	})
}

func (m *Manager) RevealLetter(ctx context.Context, userID int64, id string) (Snapshot, error) {
	return m.mutate(ctx, userID, id, func(s game.Session) (game.Session, game.Effect, error) {
		return s.RevealLetter(m.rng)
	})
}

func (m *Manager) EliminateLetters(ctx context.Context, userID int64, id string) (Snapshot, error) {
	return m.mutate(ctx, userID, id, func(s game.Session) (game.Session, game.Effect, error) {
		return s.EliminateLetters(m.rng)
	})
}

func (m *Manager) mutate(ctx context.Context, userID int64, id string,
	fn func(game.Session) (game.Session, game.Effect, error),
) (Snapshot, error) {
	l, err := m.lookup(userID, id)
	if err != nil {
		return Snapshot{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gone {
		return Snapshot{}, ErrSessionNotFound
	}

	next, effect, err := fn(l.session)
	if err != nil {
		return Snapshot{}, err
	}
	m.apply(ctx, l, next, effect)
	return l.snapshot(), nil
}

// apply stores a transition. Callers hold l.mu.
func (m *Manager) apply(ctx context.Context, l *live, next game.Session, effect game.Effect) {
	if effect.Kind == game.EffectIgnored {
		l.lastEffect = effect
		return
	}

	l.session = next
	l.lastEffect = effect

	if effect.Outcome == nil {
		l.publish(false)
		return
	}

	l.finishedAt = m.now().UTC()
	l.stop()
	l.publish(true)

	finished := Finished{SessionID: l.id, UserID: l.userID, WordID: l.wordID, Outcome: *effect.Outcome}
	m.dispatch(ctx, l.userID, func(ctx context.Context) { m.sink.Finished(ctx, finished) })
}

func (m *Manager) dispatch(ctx context.Context, userID int64, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	done := make(chan struct{})
	m.pendingMu.Lock()
	m.pending[userID] = append(m.pending[userID], done)
	m.pendingMu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(userID, done)
		defer func() {
			if r := recover(); r != nil {
				m.log.ErrorContext(ctx, "outcome sink panicked", "error", r)
			}
		}()
		fn(ctx)
	}()
}

func (m *Manager) release(userID int64, done chan struct{}) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()

	rest := slices.DeleteFunc(m.pending[userID], func(ch chan struct{}) bool { return ch == done })
	if len(rest) == 0 {
		delete(m.pending, userID)
	} else {
		m.pending[userID] = rest
	}
	close(done)
}

func (m *Manager) countdown(l *live) {
	ticks, release := m.newTicker(time.Second)
	defer release()

	for {
		select {
		case <-l.done:
			return
		case <-ticks:
			if !m.tick(l) {
				return
			}
		}
	}
}

// tick advances the countdown and reports whether it should keep running.
func (m *Manager) tick(l *live) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gone || !l.session.Active() {
		return false
	}

	next, effect := l.session.Tick()
	m.apply(context.Background(), l, next, effect)
	return next.Active()
}

// Subscribe streams a snapshot after every transition, starting with the
// current state. The channel is closed once the session ends or is dropped.
func (m *Manager) Subscribe(userID int64, id string) (<-chan Snapshot, func(), error) {
	l, err := m.lookup(userID, id)
	if err != nil {
		return nil, nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	ch <- l.snapshot()
	if l.gone || !l.session.Active() {
		close(ch)
		return ch, func() {}, nil
	}

	key := l.nextSub
	l.nextSub++
	l.subs[key] = ch

	unsubscribe := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if sub, ok := l.subs[key]; ok {
			delete(l.subs, key)
			close(sub)
		}
	}
	return ch, unsubscribe, nil
}

// Fact returns the cached fact of a finished session, loading it with load
// on first use.
func (m *Manager) Fact(userID int64, id string, load func(word string) (string, error)) (string, error) {
	l, err := m.lookup(userID, id)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	if l.session.Active() {
		l.mu.Unlock()
		return "", ErrSessionActive
	}
	if l.fact != "" {
		fact := l.fact
		l.mu.Unlock()
		return fact, nil
	}
	word := l.session.Word()
	l.mu.Unlock()

	fact, err := load(word)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.fact = fact
	l.mu.Unlock()
	return fact, nil
}

// Reap drops sessions that finished more than olderThan ago.
func (m *Manager) Reap(olderThan time.Duration) int {
	cutoff := m.now().UTC().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	for id, l := range m.sessions {
		l.mu.Lock()
		expired := !l.session.Active() && l.finishedAt.Before(cutoff)
		if expired {
			l.gone = true
			l.closeSubs()
		}
		l.mu.Unlock()

		if !expired {
			continue
		}
		delete(m.sessions, id)
		if m.byUser[l.userID] == id {
			delete(m.byUser, l.userID)
		}
		reaped++
	}
	return reaped
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops every countdown and waits for pending sink calls.
func (m *Manager) Close() {
	m.mu.Lock()
	for _, l := range m.sessions {
		l.mu.Lock()
		l.stop()
		l.closeSubs()
		l.mu.Unlock()
	}
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Manager) lookup(userID int64, id string) (*live, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if l.userID != userID {
		return nil, ErrForbidden
	}
	return l, nil
}

func (l *live) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// publish fans the current snapshot out without blocking. The final snapshot
// replaces the oldest queued one when a subscriber is behind.
func (l *live) publish(final bool) {
	snap := l.snapshot()
	for _, ch := range l.subs {
		select {
		case ch <- snap:
		default:
			if final {
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- snap:
				default:
				}
			}
		}
	}
	if final {
		l.closeSubs()
	}
}

func (l *live) closeSubs() {
	for key, ch := range l.subs {
		close(ch)
		delete(l.subs, key)
	}
}
