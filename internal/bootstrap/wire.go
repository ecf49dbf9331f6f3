package bootstrap

import (
	"fmt"
	"log/slog"
	"os"

	"selcap/internal/audio"
	"selcap/internal/config"
	"selcap/internal/domain"
	"selcap/internal/ports"
	"selcap/internal/providers/hostbridge"
	"selcap/internal/providers/standalone"
	"selcap/internal/symbols"
	"selcap/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Interceptor *usecase.Interceptor
	Symbols     *symbols.Store
	Config      config.Config
}

// Build wires all backend dependencies for the configured mode.
func Build(cfg config.Config, log *slog.Logger) (Services, error) {
	store, err := symbols.NewStore(cfg.Symbols.Dir, log)
	if err != nil {
		return Services{}, err
	}

	host, err := hostPlatform(cfg, log)
	if err != nil {
		return Services{}, err
	}

	interceptor := usecase.NewInterceptor(host, store, log, usecase.Config{
		SettingsTimeout: cfg.Bridge.QueryTimeout,
	})

	return Services{Interceptor: interceptor, Symbols: store, Config: cfg}, nil
}

func hostPlatform(cfg config.Config, log *slog.Logger) (ports.HostPlatform, error) {
	switch cfg.Mode {
	case config.ModeStandalone:
		beeper := audio.NewBeeper(audio.BeeperConfig{Command: cfg.Speech.PlayerCommand})
		speaker := audio.NewSpeaker(audio.SpeakerConfig{
			Command:   cfg.Speech.SynthCommand,
			Voice:     cfg.Speech.Voice,
			Rate:      cfg.Speech.Rate,
			BasePitch: cfg.Speech.BasePitch,
		}, beeper)
		return standalone.New(os.Stdin, speaker, StandaloneSettings(cfg), log), nil
	case config.ModeBridge:
		return hostbridge.New(hostbridge.Config{
			URL:   cfg.Bridge.URL,
			Token: cfg.Bridge.Token,
		}), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

// StandaloneSettings derives the fixed speech settings served when no
// host is present to query.
func StandaloneSettings(cfg config.Config) domain.SpeechSettings {
	return domain.SpeechSettings{
		Caps: domain.CapitalPreferences{
			PitchChange: cfg.Speech.PitchChange,
			SayCap:      cfg.Speech.SayCap,
			Beep:        cfg.Speech.Beep,
		},
		Synth: domain.SynthCapabilities{
			Name:          cfg.Speech.SynthCommand,
			SupportsPitch: true,
		},
		Locale: cfg.Speech.Locale,
	}
}
