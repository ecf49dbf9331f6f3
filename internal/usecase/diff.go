package usecase

import (
	"unicode/utf8"

	"selcap/internal/domain"
)

// changedPieces computes what to announce for one selection change by
// comparing the previous and new spans. Pieces come back in speaking order,
// selected text before unselected text, already filtered by the event's
// verbosity switches.
func changedPieces(ev domain.SelectionEvent) []domain.Piece {
	oldSpan, newSpan := ev.Old, ev.New
	if newSpan.Collapsed() && oldSpan.Collapsed() {
		return nil
	}

	var selected, unselected []string
	switch {
	case ev.SpeakSelected && oldSpan.Collapsed():
		selected = appendPiece(selected, newSpan.Text)
	case ev.SpeakUnselected && newSpan.Collapsed():
		unselected = appendPiece(unselected, oldSpan.Text)
	default:
		if newSpan.Start > oldSpan.End || newSpan.End < oldSpan.Start {
			// The spans do not touch: everything changed.
			if ev.SpeakSelected && !newSpan.Collapsed() {
				selected = appendPiece(selected, newSpan.Text)
			}
			if ev.SpeakUnselected && !oldSpan.Collapsed() {
				unselected = appendPiece(unselected, oldSpan.Text)
			}
		} else {
			newRunes := []rune(newSpan.Text)
			oldRunes := []rune(oldSpan.Text)
			if ev.SpeakSelected && !newSpan.Collapsed() {
				if newSpan.Start < oldSpan.Start {
					selected = appendPiece(selected, runeSlice(newRunes, 0, oldSpan.Start-newSpan.Start))
				}
				if newSpan.End > oldSpan.End {
					selected = appendPiece(selected, runeSlice(newRunes, oldSpan.End-newSpan.Start, len(newRunes)))
				}
			}
			if ev.SpeakUnselected && !oldSpan.Collapsed() {
				if newSpan.Start > oldSpan.Start {
					unselected = appendPiece(unselected, runeSlice(oldRunes, 0, newSpan.Start-oldSpan.Start))
				}
				if newSpan.End < oldSpan.End {
					unselected = appendPiece(unselected, runeSlice(oldRunes, newSpan.End-oldSpan.Start, len(oldRunes)))
				}
			}
		}
	}

	pieces := make([]domain.Piece, 0, len(selected)+len(unselected))
	if !ev.Generalize {
		for _, text := range selected {
			pieces = append(pieces, domain.Piece{Kind: domain.PieceSelected, Text: text})
		}
		for _, text := range unselected {
			pieces = append(pieces, domain.Piece{Kind: domain.PieceUnselected, Text: text})
		}
		return pieces
	}

	// Generalized changes are summarized from the new span instead of
	// itemized piece by piece.
	if len(selected) > 0 {
		pieces = append(pieces, domain.Piece{Kind: domain.PieceSelected, Text: newSpan.Text})
	}
	if len(unselected) > 0 {
		switch {
		case !newSpan.Collapsed() && utf8.RuneCountInString(newSpan.Text) == 1:
			pieces = append(pieces, domain.Piece{Kind: domain.PieceUnselected, Text: newSpan.Text})
		case !newSpan.Collapsed():
			pieces = append(pieces, domain.Piece{Kind: domain.PieceReplaced, Text: newSpan.Text})
		default:
			pieces = append(pieces, domain.Piece{Kind: domain.PieceSelectionGone})
		}
	}
	return pieces
}

func appendPiece(pieces []string, text string) []string {
	if text == "" {
		return pieces
	}
	return append(pieces, text)
}

// runeSlice extracts runes[from:to], clamping both bounds so malformed host
// offsets never panic.
func runeSlice(runes []rune, from int, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	if from >= to {
		return ""
	}
	return string(runes[from:to])
}
