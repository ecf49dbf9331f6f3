package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"selcap/internal/config"
	"selcap/internal/logging"
)

func TestBuildBridgeMode(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Mode: config.ModeBridge}
	services, err := Build(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Interceptor == nil {
		t.Fatalf("expected interceptor")
	}
	if services.Symbols == nil {
		t.Fatalf("expected symbol store")
	}
}

func TestBuildStandaloneMode(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Mode: config.ModeStandalone}
	services, err := Build(cfg, logging.Nop())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Interceptor == nil {
		t.Fatalf("expected interceptor")
	}
}

func TestBuildFailsOnBrokenSymbols(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.dic"), []byte("no tab here\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := config.Config{Mode: config.ModeBridge}
	cfg.Symbols.Dir = dir
	if _, err := Build(cfg, logging.Nop()); err == nil {
		t.Fatalf("expected build error due to broken symbols")
	}
}

func TestBuildRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Mode: "turbo"}
	if _, err := Build(cfg, logging.Nop()); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestStandaloneSettings(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.Speech.PitchChange = 30
	cfg.Speech.SayCap = true
	cfg.Speech.Beep = true
	cfg.Speech.SynthCommand = "espeak-ng"
	cfg.Speech.Locale = "fr"

	settings := StandaloneSettings(cfg)
	if settings.Caps.PitchChange != 30 || !settings.Caps.SayCap || !settings.Caps.Beep {
		t.Fatalf("unexpected caps: %+v", settings.Caps)
	}
	if settings.Synth.Name != "espeak-ng" || !settings.Synth.SupportsPitch {
		t.Fatalf("unexpected synth: %+v", settings.Synth)
	}
	if settings.Locale != "fr" {
		t.Fatalf("unexpected locale: %q", settings.Locale)
	}
}
