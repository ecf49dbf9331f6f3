package usecase

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
	"unicode"

	"selcap/internal/domain"
	"selcap/internal/ports"
)

var ErrNotSubscribed = errors.New("no active selection subscription")

// Config controls interceptor behavior.
type Config struct {
	// SettingsTimeout bounds the per-event speech-settings query. A query
	// that misses the deadline degrades that one event to pass-through.
	SettingsTimeout time.Duration
}

// Interceptor subscribes to host selection-change events and re-announces
// single-character selections with capital indicators, deferring to the
// host's default announcement for everything else.
type Interceptor struct {
	host    ports.HostPlatform
	symbols ports.SymbolProcessor
	log     *slog.Logger
	cfg     Config

	mu      sync.Mutex
	current *activeSubscription
}

type activeSubscription struct {
	cancel  func()
	session ports.HostSession
	done    chan struct{}
}

func NewInterceptor(host ports.HostPlatform, symbols ports.SymbolProcessor, log *slog.Logger, cfg Config) *Interceptor {
	if log == nil {
		log = slog.Default()
	}
	if cfg.SettingsTimeout <= 0 {
		cfg.SettingsTimeout = 2 * time.Second
	}
	return &Interceptor{
		host:    host,
		symbols: symbols,
		log:     log,
		cfg:     cfg,
	}
}

// Start connects to the host and begins consuming selection events. A second
// Start replaces the previous subscription.
func (i *Interceptor) Start(ctx context.Context) error {
	var previous *activeSubscription

	i.mu.Lock()
	if i.current != nil {
		previous = i.current
		i.current = nil
	}
	i.mu.Unlock()

	if previous != nil {
		i.stopSubscription(previous)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	session, err := i.host.Connect(sessionCtx)
	if err != nil {
		cancel()
		return err
	}

	active := &activeSubscription{
		cancel:  cancel,
		session: session,
		done:    make(chan struct{}),
	}

	i.mu.Lock()
	i.current = active
	i.mu.Unlock()

	go i.consumeSelectionEvents(sessionCtx, active)
	i.log.Info("selection subscription started")
	return nil
}

// Stop unsubscribes and tears down the host session.
func (i *Interceptor) Stop() error {
	active, err := i.getCurrent()
	if err != nil {
		return err
	}

	i.stopSubscription(active)

	i.mu.Lock()
	if i.current == active {
		i.current = nil
	}
	i.mu.Unlock()

	i.log.Info("selection subscription stopped")
	return nil
}

// Wait blocks until the active session ends and returns its terminal error.
func (i *Interceptor) Wait() error {
	active, err := i.getCurrent()
	if err != nil {
		return err
	}
	<-active.done
	return active.session.Wait()
}

// Status returns the current runtime status.
func (i *Interceptor) Status() domain.Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		return domain.Status{State: domain.StateIdle, Active: false}
	}
	return domain.Status{State: domain.StateListening, Active: true}
}

func (i *Interceptor) getCurrent() (*activeSubscription, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.current == nil {
		return nil, ErrNotSubscribed
	}
	return i.current, nil
}

func (i *Interceptor) stopSubscription(active *activeSubscription) {
	active.cancel()
	_ = active.session.Close()
	<-active.done
}

// consumeSelectionEvents drains the subscription one event at a time; each
// event is handled to completion before the next is read. The loop also ends
// on cancellation so sessions whose feed cannot unblock still stop cleanly.
func (i *Interceptor) consumeSelectionEvents(ctx context.Context, active *activeSubscription) {
	defer close(active.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-active.session.Events():
			if !ok {
				return
			}
			i.handleEvent(ctx, active.session, event)
		}
	}
}

// handleEvent runs the decision for one selection change. Every failure mode
// falls back to pass-through so the host's default announcement still fires.
func (i *Interceptor) handleEvent(ctx context.Context, session ports.HostSession, event domain.SelectionEvent) {
	defer func() {
		if r := recover(); r != nil {
			i.log.Error("selection handler panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			i.passThrough(ctx, session, event)
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, i.cfg.SettingsTimeout)
	settings, err := session.SpeechSettings(queryCtx)
	cancel()
	if err != nil {
		i.log.Warn("speech settings unavailable, deferring to host", "error", err)
		i.passThrough(ctx, session, event)
		return
	}

	announcements := Decide(event, settings, i.symbols)
	if len(announcements) == 0 {
		i.passThrough(ctx, session, event)
		return
	}

	for _, announcement := range announcements {
		if err := session.Announce(ctx, announcement); err != nil {
			i.log.Warn("announcement failed, deferring to host", "error", err)
			i.passThrough(ctx, session, event)
			return
		}
	}
}

func (i *Interceptor) passThrough(ctx context.Context, session ports.HostSession, event domain.SelectionEvent) {
	if err := session.PassThrough(ctx, event); err != nil {
		i.log.Warn("pass-through signal failed", "error", err)
	}
}

// Decide computes the announcements for one selection event, or nil when the
// event should pass through to the host's default behavior. It is a pure
// function of the event and the settings.
func Decide(event domain.SelectionEvent, settings domain.SpeechSettings, symbols ports.SymbolProcessor) []domain.Announcement {
	pieces := changedPieces(event)
	if !shouldTakeOver(pieces, settings) {
		return nil
	}

	announcements := make([]domain.Announcement, 0, len(pieces))
	for _, piece := range pieces {
		announcements = append(announcements, buildPieceAnnouncement(piece, settings, symbols))
	}
	return announcements
}

// shouldTakeOver reports whether the event contains a single-character
// uppercase piece and at least one capital indicator is effectively enabled.
func shouldTakeOver(pieces []domain.Piece, settings domain.SpeechSettings) bool {
	if !indicatorsEnabled(settings) {
		return false
	}
	for _, piece := range pieces {
		runes := []rune(piece.Text)
		if len(runes) == 1 && unicode.IsUpper(runes[0]) {
			return true
		}
	}
	return false
}

// indicatorsEnabled reports whether any capital indicator would have an
// audible effect. A pitch change counts only when the synthesizer honors
// pitch commands.
func indicatorsEnabled(settings domain.SpeechSettings) bool {
	if settings.Caps.SayCap || settings.Caps.Beep {
		return true
	}
	return settings.Caps.PitchChange != 0 && settings.Synth.SupportsPitch
}
