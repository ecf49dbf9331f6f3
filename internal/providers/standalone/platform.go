// Package standalone runs selcap without a screen reader host. Selection
// events arrive as JSON lines on an input stream and announcements play
// through a local speech output, which makes the decision pipeline easy
// to exercise from a terminal.
package standalone

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"selcap/internal/domain"
	"selcap/internal/ports"
)

// Output renders one announcement audibly.
type Output interface {
	Speak(ctx context.Context, announcement domain.Announcement) error
}

// Platform implements ports.HostPlatform over a line-delimited event
// stream, one JSON selection event per line.
type Platform struct {
	input    io.Reader
	output   Output
	settings domain.SpeechSettings
	log      *slog.Logger
}

func New(input io.Reader, output Output, settings domain.SpeechSettings, log *slog.Logger) *Platform {
	if log == nil {
		log = slog.Default()
	}
	return &Platform{input: input, output: output, settings: settings, log: log}
}

func (p *Platform) Connect(ctx context.Context) (ports.HostSession, error) {
	if p.input == nil {
		return nil, errors.New("standalone platform needs an event input")
	}
	if p.output == nil {
		return nil, errors.New("standalone platform needs a speech output")
	}

	session := &standaloneSession{
		output:   p.output,
		settings: p.settings,
		log:      p.log,
		events:   make(chan domain.SelectionEvent, 16),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go session.readLoop(p.input)
	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()
	return session, nil
}

type standaloneSession struct {
	output   Output
	settings domain.SpeechSettings
	log      *slog.Logger

	events chan domain.SelectionEvent
	stop   chan struct{}
	done   chan struct{}

	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

func (s *standaloneSession) Events() <-chan domain.SelectionEvent {
	return s.events
}

func (s *standaloneSession) SpeechSettings(_ context.Context) (domain.SpeechSettings, error) {
	return s.settings, nil
}

func (s *standaloneSession) Announce(ctx context.Context, announcement domain.Announcement) error {
	return s.output.Speak(ctx, announcement)
}

// PassThrough plays the announcement the host would have produced on its
// own, since there is no host here to defer to.
func (s *standaloneSession) PassThrough(ctx context.Context, event domain.SelectionEvent) error {
	text := defaultUtterance(event)
	if text == "" {
		return nil
	}
	return s.output.Speak(ctx, domain.Announcement{
		Commands: []domain.SpeechCommand{domain.Text(text)},
	})
}

// Wait returns when the input stream ends or the session is closed.
func (s *standaloneSession) Wait() error {
	select {
	case <-s.done:
	case <-s.stop:
	}
	return s.waitErr()
}

// Close stops event delivery. The read loop itself may stay blocked on
// the input stream until it produces another line or reaches EOF.
func (s *standaloneSession) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *standaloneSession) readLoop(input io.Reader) {
	defer func() {
		close(s.events)
		close(s.done)
	}()

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event domain.SelectionEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			s.log.Warn("skipping malformed selection event", "error", err)
			continue
		}
		select {
		case s.events <- event:
		case <-s.stop:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.setErr(fmt.Errorf("failed to read selection events: %w", err))
	}
}

func (s *standaloneSession) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *standaloneSession) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// defaultUtterance mirrors the host's stock selection announcement.
func defaultUtterance(event domain.SelectionEvent) string {
	if !event.New.Collapsed() && event.New.Text != "" {
		return fmt.Sprintf("%s selected", event.New.Text)
	}
	if !event.Old.Collapsed() && event.New.Collapsed() {
		return "selection removed"
	}
	return ""
}
