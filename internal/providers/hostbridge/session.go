// Package hostbridge connects selcap to a screen reader host over a
// websocket bridge. The host pushes selection changes and answers
// speech settings queries; selcap pushes announcements or pass-through
// signals back.
package hostbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"selcap/internal/domain"
	"selcap/internal/ports"
)

const defaultBridgeURL = "ws://127.0.0.1:7654"

// ErrSessionClosed reports use of a bridge session after it ended.
var ErrSessionClosed = errors.New("bridge session closed")

const (
	typeSelectionChange = "selection.change"
	typeSpeechQuery     = "speech.query"
	typeSpeechSettings  = "speech.settings"
	typeAnnounce        = "announce"
	typePassThrough     = "passthrough"
	typeError           = "error"
)

// wireMessage is the envelope for every frame on the bridge socket.
// Fields are populated per message type; the rest stay empty.
type wireMessage struct {
	Type      string                 `json:"type"`
	ID        string                 `json:"id,omitempty"`
	Selection *domain.SelectionEvent `json:"selection,omitempty"`
	Settings  *domain.SpeechSettings `json:"settings,omitempty"`
	Commands  []domain.SpeechCommand `json:"commands,omitempty"`
	Message   string                 `json:"message,omitempty"`
}

// Config controls the bridge connection.
type Config struct {
	URL   string
	Token string
}

// Platform implements ports.HostPlatform over the websocket bridge.
type Platform struct {
	cfg Config
}

func New(cfg Config) *Platform {
	if cfg.URL == "" {
		cfg.URL = defaultBridgeURL
	}
	return &Platform{cfg: cfg}
}

func (p *Platform) Connect(ctx context.Context) (ports.HostSession, error) {
	sessionURL, err := buildSessionURL(p.cfg.URL)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	if strings.TrimSpace(p.cfg.Token) != "" {
		headers.Set("Authorization", "Token "+p.cfg.Token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, sessionURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host bridge: %w", err)
	}

	session := &bridgeSession{
		conn:    conn,
		events:  make(chan domain.SelectionEvent, 64),
		out:     make(chan []byte, 32),
		done:    make(chan struct{}),
		pending: make(map[string]chan domain.SpeechSettings),
	}

	session.wg.Add(2)
	go session.readLoop()
	go session.writeLoop()
	go func() {
		session.wg.Wait()
		close(session.events)
		close(session.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	return session, nil
}

type bridgeSession struct {
	conn *websocket.Conn

	events chan domain.SelectionEvent
	out    chan []byte
	done   chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	pendingMu sync.Mutex
	pending   map[string]chan domain.SpeechSettings

	closeSendOnce sync.Once
	closeOnce     sync.Once
	sendMu        sync.RWMutex
	sendClosed    bool
}

func (s *bridgeSession) Events() <-chan domain.SelectionEvent {
	return s.events
}

// SpeechSettings asks the host for its current speech settings and
// waits for the correlated reply.
func (s *bridgeSession) SpeechSettings(ctx context.Context) (domain.SpeechSettings, error) {
	id := uuid.NewString()
	reply := make(chan domain.SpeechSettings, 1)

	s.pendingMu.Lock()
	s.pending[id] = reply
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, id)
		s.pendingMu.Unlock()
	}()

	payload, err := json.Marshal(wireMessage{Type: typeSpeechQuery, ID: id})
	if err != nil {
		return domain.SpeechSettings{}, fmt.Errorf("failed to encode settings query: %w", err)
	}
	if err := s.send(ctx, payload); err != nil {
		return domain.SpeechSettings{}, err
	}

	select {
	case settings := <-reply:
		return settings, nil
	case <-ctx.Done():
		return domain.SpeechSettings{}, ctx.Err()
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return domain.SpeechSettings{}, err
		}
		return domain.SpeechSettings{}, ErrSessionClosed
	}
}

func (s *bridgeSession) Announce(ctx context.Context, announcement domain.Announcement) error {
	payload, err := json.Marshal(wireMessage{Type: typeAnnounce, Commands: announcement.Commands})
	if err != nil {
		return fmt.Errorf("failed to encode announcement: %w", err)
	}
	return s.send(ctx, payload)
}

func (s *bridgeSession) PassThrough(ctx context.Context, event domain.SelectionEvent) error {
	payload, err := json.Marshal(wireMessage{Type: typePassThrough, Selection: &event})
	if err != nil {
		return fmt.Errorf("failed to encode pass-through: %w", err)
	}
	return s.send(ctx, payload)
}

func (s *bridgeSession) send(ctx context.Context, payload []byte) error {
	s.sendMu.RLock()
	closed := s.sendClosed
	s.sendMu.RUnlock()
	if closed {
		return ErrSessionClosed
	}

	select {
	case s.out <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return ErrSessionClosed
	}
}

func (s *bridgeSession) closeSend() {
	s.closeSendOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.out)
		s.sendMu.Unlock()
	})
}

func (s *bridgeSession) Wait() error {
	<-s.done
	return s.waitErr()
}

func (s *bridgeSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeSend()
		_ = s.conn.Close()
	})
	<-s.done
	return s.waitErr()
}

func (s *bridgeSession) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// setErr records the first real session error. Clean shutdown noise is
// not an error: normal close codes and reads racing our own conn.Close
// are filtered out even when wrapped.
func (s *bridgeSession) setErr(err error) {
	if err == nil {
		return
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure,
			websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived:
			return
		}
	}
	if errors.Is(err, net.ErrClosed) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *bridgeSession) writeLoop() {
	defer s.wg.Done()

	for payload := range s.out {
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.setErr(fmt.Errorf("failed to send bridge message: %w", err))
			return
		}
	}

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := s.conn.WriteMessage(websocket.CloseMessage, message); err != nil {
		s.setErr(fmt.Errorf("failed to close bridge stream: %w", err))
	}
}

// readLoop ends on any read failure or host error frame. Closing the send
// side on the way out lets the write loop finish so teardown cascades even
// when nothing else is being sent.
func (s *bridgeSession) readLoop() {
	defer s.wg.Done()
	defer s.closeSend()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read bridge message: %w", err))
			return
		}

		var msg wireMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}

		switch {
		case strings.EqualFold(msg.Type, typeSelectionChange):
			if msg.Selection == nil {
				continue
			}
			s.emit(*msg.Selection)
		case strings.EqualFold(msg.Type, typeSpeechSettings):
			if msg.Settings == nil {
				continue
			}
			s.resolve(msg.ID, *msg.Settings)
		case strings.EqualFold(msg.Type, typeError):
			message := strings.TrimSpace(msg.Message)
			if message == "" {
				message = "host bridge returned an unknown error"
			}
			s.setErr(errors.New(message))
			return
		}
	}
}

func (s *bridgeSession) resolve(id string, settings domain.SpeechSettings) {
	s.pendingMu.Lock()
	reply, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.pendingMu.Unlock()
	if ok {
		reply <- settings
	}
}

func (s *bridgeSession) emit(event domain.SelectionEvent) {
	select {
	case s.events <- event:
	case <-s.done:
	default:
	}
}

func buildSessionURL(raw string) (string, error) {
	base := strings.TrimSpace(raw)
	if base == "" {
		base = defaultBridgeURL
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	sessionURL, err := url.Parse(base + "/v1/session")
	if err != nil {
		return "", fmt.Errorf("invalid host bridge URL: %w", err)
	}
	return sessionURL.String(), nil
}
