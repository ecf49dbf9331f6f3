package usecase

import (
	"strings"
	"unicode"

	"selcap/internal/domain"
	"selcap/internal/ports"
)

// Spoken templates kept aligned with the host's own selection messages. The
// %s placeholder marks where the changed text is inserted.
const (
	templateSelected      = "%s selected"
	templateUnselected    = "%s unselected"
	templateReplaced      = "%s selected instead"
	templateSelectionGone = "selection removed"
	capitalPrefixTemplate = "cap %s"
)

func pieceTemplate(kind domain.PieceKind) string {
	switch kind {
	case domain.PieceUnselected:
		return templateUnselected
	case domain.PieceReplaced:
		return templateReplaced
	case domain.PieceSelectionGone:
		return templateSelectionGone
	default:
		return templateSelected
	}
}

// buildPieceAnnouncement shapes one changed piece into an utterance.
// Single characters are spelled with capital indicators where enabled;
// longer runs get the plain template text.
func buildPieceAnnouncement(piece domain.Piece, settings domain.SpeechSettings, symbols ports.SymbolProcessor) domain.Announcement {
	template := pieceTemplate(piece.Kind)
	if piece.Kind == domain.PieceSelectionGone {
		return domain.Announcement{Commands: []domain.SpeechCommand{domain.Text(template)}}
	}

	runes := []rune(piece.Text)
	if len(runes) == 1 {
		return buildCharAnnouncement(piece.Text, template, settings, symbols)
	}
	message := strings.Replace(template, "%s", piece.Text, 1)
	return domain.Announcement{Commands: []domain.SpeechCommand{domain.Text(message)}}
}

// buildCharAnnouncement spells a single character inside a message template,
// applying the capital indicators the host uses for character navigation.
func buildCharAnnouncement(char string, template string, settings domain.SpeechSettings, symbols ports.SymbolProcessor) domain.Announcement {
	speakCharAs := char
	if symbols != nil {
		speakCharAs = symbols.Speakable(settings.Locale, char)
	}

	upper := isUpperChar(char)
	pitchChange := 0
	if upper && settings.Synth.SupportsPitch {
		pitchChange = settings.Caps.PitchChange
	}

	charSequence := charWithCapNotification(
		speakCharAs,
		upper && settings.Caps.SayCap,
		pitchChange,
		upper && settings.Caps.Beep,
	)
	return applyTemplate(template, charSequence)
}

// charWithCapNotification builds the spelling sequence for one character:
// pitch shift, then the beep, then the optionally "cap"-prefixed character,
// then the pitch reset. The pitch shift covers the prefix and the character.
func charWithCapNotification(speakCharAs string, sayCap bool, pitchChange int, beep bool) []domain.SpeechCommand {
	capBefore, capAfter := "", ""
	if sayCap {
		capBefore, capAfter, _ = strings.Cut(capitalPrefixTemplate, "%s")
	}

	sequence := make([]domain.SpeechCommand, 0, 6)
	if pitchChange != 0 {
		sequence = append(sequence, domain.Pitch(pitchChange))
	}
	if beep {
		sequence = append(sequence, domain.Beep(domain.CapBeepHz, domain.CapBeepDurationMS, domain.CapBeepVolume, domain.CapBeepVolume))
	}
	if capBefore != "" {
		sequence = append(sequence, domain.Text(capBefore))
	}
	sequence = append(sequence, domain.Text(speakCharAs))
	if capAfter != "" {
		sequence = append(sequence, domain.Text(capAfter))
	}
	if pitchChange != 0 {
		sequence = append(sequence, domain.Pitch(0))
	}
	return sequence
}

// applyTemplate inserts a character sequence at the template's %s
// placeholder. Templates without a placeholder speak the sequence first and
// the template text after it.
func applyTemplate(template string, charSequence []domain.SpeechCommand) domain.Announcement {
	before, after, found := strings.Cut(template, "%s")
	if !found {
		return domain.Announcement{Commands: append(charSequence, domain.Text(template))}
	}

	commands := make([]domain.SpeechCommand, 0, len(charSequence)+2)
	if before != "" {
		commands = append(commands, domain.Text(before))
	}
	commands = append(commands, charSequence...)
	if after != "" {
		commands = append(commands, domain.Text(after))
	}
	return domain.Announcement{Commands: commands}
}

func isUpperChar(char string) bool {
	runes := []rune(char)
	return len(runes) == 1 && unicode.IsUpper(runes[0])
}
