package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/medienreflexion/internal/router"
	"github.com/abhisek/medienreflexion/internal/screen"
	"github.com/abhisek/medienreflexion/internal/screens/flow"
	"github.com/abhisek/medienreflexion/internal/screens/intro"
	"github.com/abhisek/medienreflexion/internal/screens/quiz"
	"github.com/abhisek/medienreflexion/internal/screens/result"
	"github.com/abhisek/medienreflexion/internal/screens/review"
	"github.com/abhisek/medienreflexion/internal/session"
	"github.com/abhisek/medienreflexion/internal/store"
	"github.com/abhisek/medienreflexion/internal/ui/components"
	"github.com/abhisek/medienreflexion/internal/ui/layout"
	"github.com/abhisek/medienreflexion/internal/ui/theme"
)

// Options configures the TUI.
type Options struct {
	Deps flow.Deps

	// Prefs stores the theme choice. Nil disables persistence.
	Prefs store.PreferenceRepo
}

// Screens maps every session phase to its screen.
var Screens = flow.Screens{
	session.PhaseIntro:     func(f *flow.Flow) screen.Screen { return intro.New(f) },
	session.PhaseAnswering: func(f *flow.Flow) screen.Screen { return quiz.New(f) },
	session.PhaseReviewing: func(f *flow.Flow) screen.Screen { return review.New(f) },
	session.PhaseFinished:  func(f *flow.Flow) screen.Screen { return result.New(f) },
}

// themePrefMsg carries the stored theme preference, if any.
type themePrefMsg struct {
	Value string
	OK    bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	flow   *flow.Flow
	prefs  store.PreferenceRepo
	width  int
	height int

	// themeFixed is set once the user chose a theme, either stored or by
	// toggling. The terminal background is ignored from then on.
	themeFixed bool
}

// newAppModel creates a new AppModel showing the intro screen.
func newAppModel(opts Options) AppModel {
	f := flow.New(opts.Deps, Screens)
	return AppModel{
		router: router.New(f.Current()),
		flow:   f,
		prefs:  opts.Prefs,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tea.RequestBackgroundColor,
		m.loadThemePref(),
		m.router.Active().Init(),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.BackgroundColorMsg:
		if !m.themeFixed {
			theme.Apply(msg.IsDark())
			slog.Debug("theme from terminal background", "theme", theme.Name())
		}
		return m, nil

	case themePrefMsg:
		if msg.OK {
			m.themeFixed = true
			theme.Apply(msg.Value == "dark")
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, components.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, components.Keys.Theme):
			m.themeFixed = true
			theme.Apply(!theme.IsDark())
			return m, m.saveThemePref(theme.Name())
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) loadThemePref() tea.Cmd {
	prefs := m.prefs
	if prefs == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok, err := prefs.Get(context.Background(), store.PrefTheme)
		if err != nil {
			slog.Warn("load theme preference", "error", err)
			return themePrefMsg{}
		}
		if ok && v != "dark" && v != "light" {
			slog.Warn("ignoring unknown theme preference", "value", v)
			return themePrefMsg{}
		}
		return themePrefMsg{Value: v, OK: ok}
	}
}

func (m AppModel) saveThemePref(name string) tea.Cmd {
	prefs := m.prefs
	if prefs == nil {
		return nil
	}
	return func() tea.Msg {
		if err := prefs.Set(context.Background(), store.PrefTheme, name); err != nil {
			slog.Warn("save theme preference", "error", err)
		}
		return nil
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", themeLabel()
	var footerHints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			footerHints = kp.KeyHints()
		}
	}
	if footerHints == nil {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Auswahl"},
			{Key: "Enter", Description: "Bestätigen"},
		}
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Beenden"})

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(footerHints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func themeLabel() string {
	if theme.IsDark() {
		return "◐ dunkel"
	}
	return "◑ hell"
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Deps.Questionnaire == nil {
		return fmt.Errorf("app: questionnaire is required")
	}

	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
