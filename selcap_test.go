package selcap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"selcap/internal/config"
	"selcap/internal/domain"
	"selcap/internal/ports"
)

func TestNewBuildsBridgeService(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Mode:   config.ModeBridge,
		Bridge: config.BridgeConfig{URL: "ws://127.0.0.1:7654"},
	}
	service, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("expected service, got error: %v", err)
	}
	if got := service.Status(); got.Active {
		t.Fatalf("expected idle service, got %+v", got)
	}

	info := service.RuntimeInfo()
	if info["mode"] != config.ModeBridge {
		t.Fatalf("expected bridge mode in runtime info, got %q", info["mode"])
	}
	if info["bridgeURL"] != cfg.Bridge.URL {
		t.Fatalf("expected bridge url %q in runtime info, got %q", cfg.Bridge.URL, info["bridgeURL"])
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	if _, err := New(config.Config{Mode: "telepathy"}, nil); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestServiceLifecycle(t *testing.T) {
	t.Parallel()

	service := NewWithHost(&fakePlatform{session: newFakeSession()}, nil, nil)

	if status := service.Status(); status.Active {
		t.Fatalf("expected inactive before start, got %+v", status)
	}
	if err := service.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if status := service.Status(); !status.Active {
		t.Fatalf("expected active after start, got %+v", status)
	}
	if err := service.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if status := service.Status(); status.Active {
		t.Fatalf("expected inactive after stop, got %+v", status)
	}
}

func TestServiceRunReturnsSessionError(t *testing.T) {
	t.Parallel()

	session := newFakeSession()
	session.waitErr = errors.New("host dropped")
	session.Close()

	service := NewWithHost(&fakePlatform{session: session}, nil, nil)

	err := service.Run(context.Background())
	if !errors.Is(err, session.waitErr) {
		t.Fatalf("expected session error from run, got %v", err)
	}
	if status := service.Status(); status.Active {
		t.Fatalf("expected inactive after run, got %+v", status)
	}
}

func TestServiceRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	service := NewWithHost(&fakePlatform{session: newFakeSession()}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- service.Run(ctx) }()

	waitForActive(t, service)
	cancel()

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancellation")
	}
}

func TestServiceRunFailsWhenConnectFails(t *testing.T) {
	t.Parallel()

	service := NewWithHost(&fakePlatform{err: errors.New("no host")}, nil, nil)

	if err := service.Run(context.Background()); err == nil {
		t.Fatalf("expected connect error from run")
	}
}

func waitForActive(t *testing.T, service *Service) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if service.Status().Active {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("service never became active")
}

type fakePlatform struct {
	session *fakeSession
	err     error
}

func (f *fakePlatform) Connect(context.Context) (ports.HostSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeSession struct {
	events    chan domain.SelectionEvent
	waitErr   error
	closeOnce sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{events: make(chan domain.SelectionEvent)}
}

func (f *fakeSession) Events() <-chan domain.SelectionEvent { return f.events }

func (f *fakeSession) SpeechSettings(context.Context) (domain.SpeechSettings, error) {
	return domain.SpeechSettings{}, nil
}

func (f *fakeSession) Announce(context.Context, domain.Announcement) error { return nil }

func (f *fakeSession) PassThrough(context.Context, domain.SelectionEvent) error { return nil }

func (f *fakeSession) Wait() error { return f.waitErr }

func (f *fakeSession) Close() error {
	f.closeOnce.Do(func() { close(f.events) })
	return nil
}
