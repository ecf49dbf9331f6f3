package ports

import (
	"context"

	"selcap/internal/domain"
)

// SelectionFeed delivers host selection-change notifications. The channel is
// closed when the session ends.
type SelectionFeed interface {
	Events() <-chan domain.SelectionEvent
}

// SettingsSource answers speech-settings queries. Implementations must return
// the host's current values; callers query once per event and never cache.
type SettingsSource interface {
	SpeechSettings(ctx context.Context) (domain.SpeechSettings, error)
}

// Announcer submits announcements to the host's speech output, or yields to
// the host's default behavior for an event via PassThrough.
type Announcer interface {
	Announce(ctx context.Context, announcement domain.Announcement) error
	PassThrough(ctx context.Context, event domain.SelectionEvent) error
}

// HostSession is one live connection to the host platform.
type HostSession interface {
	SelectionFeed
	SettingsSource
	Announcer

	// Wait blocks until the session ends and returns its terminal error.
	Wait() error
	Close() error
}

// HostPlatform opens add-on sessions against a host.
type HostPlatform interface {
	Connect(ctx context.Context) (HostSession, error)
}

// SymbolProcessor resolves the spoken form of a character for a locale, for
// example "." becoming "dot".
type SymbolProcessor interface {
	Speakable(locale string, char string) string
}
