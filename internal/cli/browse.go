package cli

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dyike/WealthGo/internal/dashboard"
)

// renderPageFunc writes one filtered page and reports the page count.
type renderPageFunc func(w io.Writer, query string, page int) (totalPages int)

// filterAppliedMsg arrives once typing has paused for the debounce delay.
type filterAppliedMsg struct{ query string }

// browseModel is a live-filtered, paged dashboard view.
type browseModel struct {
	search   textinput.Model
	debounce *dashboard.Debouncer
	// send delivers debounced filter messages back into the program.
	send   func(tea.Msg)
	render renderPageFunc

	query      string
	page       int
	totalPages int
	body       string
	quitting   bool
}

func newBrowseModel(query string, delay time.Duration, render renderPageFunc) browseModel {
	in := textinput.New()
	in.Placeholder = "type to filter"
	in.Prompt = "🔍 "
	in.SetValue(query)
	in.Focus()

	m := browseModel{
		search:   in,
		debounce: dashboard.NewDebouncer(delay),
		send:     func(tea.Msg) {},
		render:   render,
		query:    query,
		page:     1,
	}
	m.draw()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case filterAppliedMsg:
		if msg.query != m.query {
			m.query = msg.query
			m.page = 1
			m.draw()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.debounce.Stop()
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			if m.search.Value() == "" {
				m.debounce.Stop()
				m.quitting = true
				return m, tea.Quit
			}
			m.search.Reset()
			m.schedule("")
			return m, nil
		case tea.KeyPgDown, tea.KeyRight, tea.KeyTab:
			if m.page < m.totalPages {
				m.page++
				m.draw()
			}
			return m, nil
		case tea.KeyPgUp, tea.KeyLeft, tea.KeyShiftTab:
			if m.page > 1 {
				m.page--
				m.draw()
			}
			return m, nil
		}

		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if after := m.search.Value(); after != before {
			m.schedule(after)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// schedule applies query after the debounce delay unless typing resumes.
func (m browseModel) schedule(query string) {
	send := m.send
	m.debounce.Trigger(func() { send(filterAppliedMsg{query: query}) })
}

func (m *browseModel) draw() {
	var buf bytes.Buffer
	m.totalPages = m.render(&buf, m.query, m.page)
	m.page = dashboard.ClampPage(m.page, m.totalPages)
	m.body = buf.String()
}

func (m browseModel) View() string {
	if m.quitting {
		return ""
	}
	keys := keyHelp("←/→", "page", "esc", "clear / quit", "ctrl+c", "quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.search.View(), "", m.body, keys)
}

// runBrowser opens the live filter, routing debounced updates through the program.
func runBrowser(cmd *cobra.Command, app *App, query string, render renderPageFunc) error {
	model := newBrowseModel(query, app.Config.SearchDebounce(), render)
	var p *tea.Program
	model.send = func(msg tea.Msg) { p.Send(msg) }
	p = tea.NewProgram(model, tea.WithContext(commandContext(cmd)),
		tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
