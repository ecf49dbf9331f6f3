package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// BeeperConfig tunes the external PCM player used for indicator beeps.
type BeeperConfig struct {
	// Command is the player binary, defaulting to aplay.
	Command string
	// SampleRate is the output rate in Hz, defaulting to 44100.
	SampleRate int
}

// Beeper synthesizes sine tones and pipes them to a PCM player.
type Beeper struct {
	command    string
	sampleRate int
}

func NewBeeper(cfg BeeperConfig) *Beeper {
	if cfg.Command == "" {
		cfg.Command = "aplay"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	return &Beeper{command: cfg.Command, sampleRate: cfg.SampleRate}
}

// Play renders a stereo tone at hz for durationMS milliseconds with
// per-channel volumes in percent. Degenerate tones are silently skipped.
func (b *Beeper) Play(ctx context.Context, hz, durationMS, leftVolume, rightVolume int) error {
	pcm := tonePCM(hz, durationMS, leftVolume, rightVolume, b.sampleRate)
	if len(pcm) == 0 {
		return nil
	}

	args := []string{
		"-q",
		"-f", "S16_LE",
		"-r", strconv.Itoa(b.sampleRate),
		"-c", "2",
		"-",
	}
	cmd := exec.CommandContext(ctx, b.command, args...)
	cmd.Stdin = bytes.NewReader(pcm)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("failed to play tone: %w: %s", err, msg)
		}
		return fmt.Errorf("failed to play tone: %w", err)
	}
	return nil
}

// tonePCM builds interleaved stereo signed 16-bit little endian samples
// of a sine tone. Volumes are clamped to 0..100 percent.
func tonePCM(hz, durationMS, leftVolume, rightVolume, sampleRate int) []byte {
	if hz <= 0 || durationMS <= 0 || sampleRate <= 0 {
		return nil
	}
	leftVolume = clampVolume(leftVolume)
	rightVolume = clampVolume(rightVolume)

	frames := sampleRate * durationMS / 1000
	out := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		sample := math.Sin(2 * math.Pi * float64(hz) * float64(i) / float64(sampleRate))
		left := int16(sample * 32767 * float64(leftVolume) / 100)
		right := int16(sample * 32767 * float64(rightVolume) / 100)
		binary.LittleEndian.PutUint16(out[i*4:], uint16(left))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(right))
	}
	return out
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
