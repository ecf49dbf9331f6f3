// Package selcap announces single-character selection changes with the
// host's capital indicators, a beep, a spoken "cap" prefix, or a pitch
// shift, and defers every other selection change to the host screen
// reader's default announcement.
package selcap

import (
	"context"
	"log/slog"

	"selcap/internal/bootstrap"
	"selcap/internal/config"
	"selcap/internal/domain"
	"selcap/internal/logging"
	"selcap/internal/ports"
	"selcap/internal/symbols"
	"selcap/internal/usecase"
)

// Service owns the interceptor lifecycle for one host attachment.
type Service struct {
	interceptor *usecase.Interceptor
	symbols     *symbols.Store
	log         *slog.Logger
	cfg         config.Config
}

// New assembles a service for the configured mode.
func New(cfg config.Config, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = logging.Nop()
	}
	services, err := bootstrap.Build(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Service{
		interceptor: services.Interceptor,
		symbols:     services.Symbols,
		log:         log,
		cfg:         services.Config,
	}, nil
}

// NewWithHost builds a service around a caller-supplied host platform,
// for embedding selcap inside another process. A nil processor speaks
// characters as-is.
func NewWithHost(host ports.HostPlatform, processor ports.SymbolProcessor, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		interceptor: usecase.NewInterceptor(host, processor, log, usecase.Config{}),
		log:         log,
	}
}

// Start subscribes to the host's selection changes.
func (s *Service) Start(ctx context.Context) error {
	return s.interceptor.Start(ctx)
}

// Stop unsubscribes and restores the host's default behavior.
func (s *Service) Stop() error {
	return s.interceptor.Stop()
}

// Status reports the current subscription state.
func (s *Service) Status() domain.Status {
	return s.interceptor.Status()
}

// Run starts the subscription and blocks until the host session ends or
// ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = s.Stop() }()

	if s.symbols != nil {
		if err := s.symbols.Watch(ctx); err != nil {
			s.log.Warn("symbol dictionary reload disabled", "error", err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- s.interceptor.Wait() }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

// RuntimeInfo returns non-sensitive runtime facts for display.
func (s *Service) RuntimeInfo() map[string]string {
	return map[string]string{
		"mode":       s.cfg.Mode,
		"bridgeURL":  s.cfg.Bridge.URL,
		"locale":     s.cfg.Speech.Locale,
		"symbolsDir": s.cfg.Symbols.Dir,
		"synth":      s.cfg.Speech.SynthCommand,
	}
}
