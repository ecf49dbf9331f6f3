// Package audio renders announcements through command line tools when
// selcap runs without a screen reader host.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"selcap/internal/domain"
)

// SpeakerConfig tunes the external speech synthesizer.
type SpeakerConfig struct {
	// Command is the synth binary, defaulting to espeak-ng.
	Command string
	// Voice is passed as the synth voice when set.
	Voice string
	// Rate is the speaking rate in words per minute, defaulting to 175.
	Rate int
	// BasePitch is the resting pitch on the synth's 0..99 scale,
	// defaulting to 50. Pitch offsets in announcements shift it.
	BasePitch int
}

// Speaker speaks announcements by shelling out to an espeak style
// synthesizer, one invocation per run of text at the same pitch.
type Speaker struct {
	cfg    SpeakerConfig
	beeper *Beeper
}

func NewSpeaker(cfg SpeakerConfig, beeper *Beeper) *Speaker {
	if cfg.Command == "" {
		cfg.Command = "espeak-ng"
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 175
	}
	if cfg.BasePitch <= 0 {
		cfg.BasePitch = 50
	}
	if cfg.BasePitch > 99 {
		cfg.BasePitch = 99
	}
	return &Speaker{cfg: cfg, beeper: beeper}
}

// Speak renders the announcement in order: text runs go to the synth at
// the pitch in effect, beeps go to the beeper.
func (s *Speaker) Speak(ctx context.Context, announcement domain.Announcement) error {
	var pending strings.Builder
	offset := 0

	flush := func() error {
		text := pending.String()
		pending.Reset()
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return s.say(ctx, text, s.pitchFor(offset))
	}

	for _, cmd := range announcement.Commands {
		switch cmd.Kind {
		case domain.CommandText:
			pending.WriteString(cmd.Text)
		case domain.CommandPitch:
			if err := flush(); err != nil {
				return err
			}
			offset = cmd.Offset
		case domain.CommandBeep:
			if err := flush(); err != nil {
				return err
			}
			if s.beeper == nil {
				continue
			}
			if err := s.beeper.Play(ctx, cmd.Hz, cmd.DurationMS, cmd.LeftVolume, cmd.RightVolume); err != nil {
				return err
			}
		}
	}
	return flush()
}

func (s *Speaker) say(ctx context.Context, text string, pitch int) error {
	args := []string{
		"-p", strconv.Itoa(pitch),
		"-s", strconv.Itoa(s.cfg.Rate),
	}
	if s.cfg.Voice != "" {
		args = append(args, "-v", s.cfg.Voice)
	}
	args = append(args, "--", text)

	cmd := exec.CommandContext(ctx, s.cfg.Command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("failed to speak: %w: %s", err, msg)
		}
		return fmt.Errorf("failed to speak: %w", err)
	}
	return nil
}

// pitchFor shifts the base pitch by a percentage offset and clamps it
// to the synth's 0..99 range.
func (s *Speaker) pitchFor(offset int) int {
	pitch := s.cfg.BasePitch + s.cfg.BasePitch*offset/100
	if pitch < 0 {
		return 0
	}
	if pitch > 99 {
		return 99
	}
	return pitch
}
