package audio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"selcap/internal/domain"
)

func TestSpeakerSpeaksTextRunsAtPitch(t *testing.T) {
	t.Parallel()

	log := filepath.Join(t.TempDir(), "calls.log")
	script := writeScript(t, "espeak.sh", "#!/usr/bin/env bash\nprintf '%s|' \"$@\" >> '"+log+"'\nprintf '\\n' >> '"+log+"'\n")
	speaker := NewSpeaker(SpeakerConfig{Command: script, Rate: 200, BasePitch: 50}, nil)

	announcement := domain.Announcement{Commands: []domain.SpeechCommand{
		domain.Pitch(30),
		domain.Text("cap "),
		domain.Text("Z"),
		domain.Pitch(0),
		domain.Text(" selected"),
	}}
	if err := speaker.Speak(context.Background(), announcement); err != nil {
		t.Fatalf("speak failed: %v", err)
	}

	contents, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("failed to read call log: %v", err)
	}
	want := "-p|65|-s|200|--|cap Z|\n-p|50|-s|200|--| selected|\n"
	if string(contents) != want {
		t.Fatalf("unexpected synth calls:\n%s", contents)
	}
}

func TestSpeakerPassesVoice(t *testing.T) {
	t.Parallel()

	log := filepath.Join(t.TempDir(), "calls.log")
	script := writeScript(t, "espeak.sh", "#!/usr/bin/env bash\nprintf '%s|' \"$@\" >> '"+log+"'\nprintf '\\n' >> '"+log+"'\n")
	speaker := NewSpeaker(SpeakerConfig{Command: script, Voice: "en-us"}, nil)

	announcement := domain.Announcement{Commands: []domain.SpeechCommand{domain.Text("hello")}}
	if err := speaker.Speak(context.Background(), announcement); err != nil {
		t.Fatalf("speak failed: %v", err)
	}

	contents, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("failed to read call log: %v", err)
	}
	want := "-p|50|-s|175|-v|en-us|--|hello|\n"
	if string(contents) != want {
		t.Fatalf("unexpected synth calls:\n%s", contents)
	}
}

func TestSpeakerPlaysBeepBetweenTextRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	synthLog := filepath.Join(dir, "synth.log")
	pcmFile := filepath.Join(dir, "tone.pcm")

	synth := writeScript(t, "espeak.sh", "#!/usr/bin/env bash\nprintf '%s|' \"$@\" >> '"+synthLog+"'\nprintf '\\n' >> '"+synthLog+"'\n")
	player := writeScript(t, "aplay.sh", "#!/usr/bin/env bash\ncat > '"+pcmFile+"'\n")

	beeper := NewBeeper(BeeperConfig{Command: player})
	speaker := NewSpeaker(SpeakerConfig{Command: synth}, beeper)

	announcement := domain.Announcement{Commands: []domain.SpeechCommand{
		domain.Beep(domain.CapBeepHz, domain.CapBeepDurationMS, domain.CapBeepVolume, domain.CapBeepVolume),
		domain.Text("A"),
	}}
	if err := speaker.Speak(context.Background(), announcement); err != nil {
		t.Fatalf("speak failed: %v", err)
	}

	info, err := os.Stat(pcmFile)
	if err != nil {
		t.Fatalf("expected tone to reach the player: %v", err)
	}
	wantBytes := int64(44100 * domain.CapBeepDurationMS / 1000 * 4)
	if info.Size() != wantBytes {
		t.Fatalf("unexpected tone size: %d, want %d", info.Size(), wantBytes)
	}

	contents, err := os.ReadFile(synthLog)
	if err != nil {
		t.Fatalf("failed to read synth log: %v", err)
	}
	if want := "-p|50|-s|175|--|A|\n"; string(contents) != want {
		t.Fatalf("unexpected synth calls:\n%s", contents)
	}
}

func TestSpeakerSkipsSilentAnnouncements(t *testing.T) {
	t.Parallel()

	log := filepath.Join(t.TempDir(), "calls.log")
	script := writeScript(t, "espeak.sh", "#!/usr/bin/env bash\ntouch '"+log+"'\n")
	speaker := NewSpeaker(SpeakerConfig{Command: script}, nil)

	announcement := domain.Announcement{Commands: []domain.SpeechCommand{
		domain.Pitch(30),
		domain.Pitch(0),
	}}
	if err := speaker.Speak(context.Background(), announcement); err != nil {
		t.Fatalf("speak failed: %v", err)
	}

	if _, err := os.Stat(log); !os.IsNotExist(err) {
		t.Fatalf("expected synth to stay untouched, stat err %v", err)
	}
}

func TestSpeakerReportsSynthFailure(t *testing.T) {
	t.Parallel()

	script := writeScript(t, "espeak.sh", "#!/usr/bin/env bash\necho 'synth exploded' 1>&2\nexit 3\n")
	speaker := NewSpeaker(SpeakerConfig{Command: script}, nil)

	announcement := domain.Announcement{Commands: []domain.SpeechCommand{domain.Text("A")}}
	err := speaker.Speak(context.Background(), announcement)
	if err == nil {
		t.Fatalf("expected speak error")
	}
	if !strings.Contains(err.Error(), "synth exploded") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeScript(t *testing.T, name string, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o700); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}
