package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"selcap/internal/audio"
	"selcap/internal/bootstrap"
	"selcap/internal/domain"
	"selcap/internal/logging"
	"selcap/internal/symbols"
	"selcap/internal/usecase"
)

var sayPrint bool

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Announce one selection of the given text and exit",
	Long: `Treat the given text as a freshly selected span and produce the same
announcement the interceptor would, using the standalone speech settings.
Useful for checking voices, pitch, and symbol dictionaries.`,
	Args: cobra.ExactArgs(1),
	RunE: runSay,
}

func init() {
	sayCmd.Flags().BoolVar(&sayPrint, "print", false, "print the announcements as JSON instead of speaking them")
	rootCmd.AddCommand(sayCmd)
}

func runSay(cmd *cobra.Command, args []string) error {
	text := args[0]
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to say")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := symbols.NewStore(cfg.Symbols.Dir, logging.Nop())
	if err != nil {
		return err
	}

	event := domain.SelectionEvent{
		New:             domain.SelectionSpan{Start: 0, End: utf8.RuneCountInString(text), Text: text},
		SpeakSelected:   true,
		SpeakUnselected: true,
	}
	announcements := usecase.Decide(event, bootstrap.StandaloneSettings(cfg), store)
	if len(announcements) == 0 {
		announcements = []domain.Announcement{
			{Commands: []domain.SpeechCommand{domain.Text(fmt.Sprintf("%s selected", text))}},
		}
	}

	if sayPrint {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(announcements)
	}

	beeper := audio.NewBeeper(audio.BeeperConfig{Command: cfg.Speech.PlayerCommand})
	speaker := audio.NewSpeaker(audio.SpeakerConfig{
		Command:   cfg.Speech.SynthCommand,
		Voice:     cfg.Speech.Voice,
		Rate:      cfg.Speech.Rate,
		BasePitch: cfg.Speech.BasePitch,
	}, beeper)

	for _, announcement := range announcements {
		if err := speaker.Speak(cmd.Context(), announcement); err != nil {
			return err
		}
	}
	return nil
}
