package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/medienreflexion/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a short status, such
// as a question counter, on the right of the header.
type StatusProvider interface {
	Status() string
}

// Stopper is implemented by screens that own background work (animations,
// requests) which must end when the screen is replaced or popped.
type Stopper interface {
	Stop()
}

// Background is implemented by screens whose asynchronous work (timers,
// requests) must keep running while another screen is pushed on top.
// The router hands them every message that is not user input.
type Background interface {
	Background(msg tea.Msg) tea.Cmd
}
