package usecase

import (
	"reflect"
	"testing"

	"selcap/internal/domain"
)

type fakeSymbols struct {
	spoken map[string]string
}

func (f *fakeSymbols) Speakable(_ string, char string) string {
	if f == nil || f.spoken == nil {
		return char
	}
	if spoken, ok := f.spoken[char]; ok {
		return spoken
	}
	return char
}

func allIndicators() domain.SpeechSettings {
	return domain.SpeechSettings{
		Caps:   domain.CapitalPreferences{PitchChange: 30, SayCap: true, Beep: true},
		Synth:  domain.SynthCapabilities{Name: "espeak", SupportsPitch: true},
		Locale: "en",
	}
}

func TestCharWithCapNotificationOrdering(t *testing.T) {
	t.Parallel()

	got := charWithCapNotification("Z", true, 30, true)
	want := []domain.SpeechCommand{
		domain.Pitch(30),
		domain.Beep(domain.CapBeepHz, domain.CapBeepDurationMS, domain.CapBeepVolume, domain.CapBeepVolume),
		domain.Text("cap "),
		domain.Text("Z"),
		domain.Pitch(0),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sequence: %+v", got)
	}
}

func TestCharWithCapNotificationBeepOnly(t *testing.T) {
	t.Parallel()

	got := charWithCapNotification("A", false, 0, true)
	want := []domain.SpeechCommand{
		domain.Beep(domain.CapBeepHz, domain.CapBeepDurationMS, domain.CapBeepVolume, domain.CapBeepVolume),
		domain.Text("A"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sequence: %+v", got)
	}
}

func TestBuildCharAnnouncementAppliesIndicatorsToUppercaseOnly(t *testing.T) {
	t.Parallel()

	settings := allIndicators()

	upper := buildCharAnnouncement("A", templateSelected, settings, nil)
	wantUpper := []domain.SpeechCommand{
		domain.Pitch(30),
		domain.Beep(domain.CapBeepHz, domain.CapBeepDurationMS, domain.CapBeepVolume, domain.CapBeepVolume),
		domain.Text("cap "),
		domain.Text("A"),
		domain.Pitch(0),
		domain.Text(" selected"),
	}
	if !reflect.DeepEqual(upper.Commands, wantUpper) {
		t.Fatalf("unexpected uppercase sequence: %+v", upper.Commands)
	}

	lower := buildCharAnnouncement("a", templateSelected, settings, nil)
	wantLower := []domain.SpeechCommand{
		domain.Text("a"),
		domain.Text(" selected"),
	}
	if !reflect.DeepEqual(lower.Commands, wantLower) {
		t.Fatalf("unexpected lowercase sequence: %+v", lower.Commands)
	}
}

func TestBuildCharAnnouncementSkipsPitchWhenUnsupported(t *testing.T) {
	t.Parallel()

	settings := allIndicators()
	settings.Caps.SayCap = false
	settings.Caps.Beep = false
	settings.Synth.SupportsPitch = false

	got := buildCharAnnouncement("A", templateSelected, settings, nil)
	want := []domain.SpeechCommand{
		domain.Text("A"),
		domain.Text(" selected"),
	}
	if !reflect.DeepEqual(got.Commands, want) {
		t.Fatalf("expected pitch to be dropped, got %+v", got.Commands)
	}
}

func TestBuildCharAnnouncementUsesSymbolName(t *testing.T) {
	t.Parallel()

	settings := allIndicators()
	symbols := &fakeSymbols{spoken: map[string]string{".": "dot"}}

	got := buildCharAnnouncement(".", templateSelected, settings, symbols)
	want := []domain.SpeechCommand{
		domain.Text("dot"),
		domain.Text(" selected"),
	}
	if !reflect.DeepEqual(got.Commands, want) {
		t.Fatalf("unexpected symbol sequence: %+v", got.Commands)
	}
}

func TestBuildPieceAnnouncementMultiCharUsesPlainTemplate(t *testing.T) {
	t.Parallel()

	got := buildPieceAnnouncement(domain.Piece{Kind: domain.PieceUnselected, Text: "hello"}, allIndicators(), nil)
	want := []domain.SpeechCommand{domain.Text("hello unselected")}
	if !reflect.DeepEqual(got.Commands, want) {
		t.Fatalf("unexpected announcement: %+v", got.Commands)
	}
}

func TestBuildPieceAnnouncementSelectionRemoved(t *testing.T) {
	t.Parallel()

	got := buildPieceAnnouncement(domain.Piece{Kind: domain.PieceSelectionGone}, allIndicators(), nil)
	want := []domain.SpeechCommand{domain.Text("selection removed")}
	if !reflect.DeepEqual(got.Commands, want) {
		t.Fatalf("unexpected announcement: %+v", got.Commands)
	}
}

func TestBuildPieceAnnouncementReplacedTemplate(t *testing.T) {
	t.Parallel()

	got := buildPieceAnnouncement(domain.Piece{Kind: domain.PieceReplaced, Text: "world"}, allIndicators(), nil)
	want := []domain.SpeechCommand{domain.Text("world selected instead")}
	if !reflect.DeepEqual(got.Commands, want) {
		t.Fatalf("unexpected announcement: %+v", got.Commands)
	}
}

func TestApplyTemplateWithoutPlaceholderAppendsText(t *testing.T) {
	t.Parallel()

	got := applyTemplate("done", []domain.SpeechCommand{domain.Text("A")})
	want := []domain.SpeechCommand{domain.Text("A"), domain.Text("done")}
	if !reflect.DeepEqual(got.Commands, want) {
		t.Fatalf("unexpected announcement: %+v", got.Commands)
	}
}

func TestIsUpperChar(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"A":  true,
		"Z":  true,
		"Ä":  true,
		"a":  false,
		"5":  false,
		".":  false,
		"":   false,
		"AB": false,
	}
	for char, want := range cases {
		if got := isUpperChar(char); got != want {
			t.Fatalf("isUpperChar(%q) = %v, want %v", char, got, want)
		}
	}
}
