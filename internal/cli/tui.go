package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dyike/WealthGo/config"
	"github.com/dyike/WealthGo/internal/chat"
	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/models"
	"github.com/dyike/WealthGo/internal/notify"
)

const (
	sendPlaceholder = "Ask about a client, news, financials or an overview…"
	editPlaceholder = "Describe the change for this advisory, Enter to send, Esc to cancel"
	tuiDecisionHint = "ctrl+s save · ctrl+e request edit"
)

// Message types
type (
	turnDoneMsg struct {
		msg models.ChatMessage
		err error
	}
	bootstrapMsg     struct{ err error }
	sessionResetMsg  struct{ err error }
	notificationsMsg []models.Notification
	markedReadMsg    struct {
		ids []string
		err error
	}
	configChangedMsg config.Config
)

// chatModel is the full-screen chat.
type chatModel struct {
	ctx      context.Context
	store    *chat.Store
	poller   *notify.Poller
	logger   *zap.Logger
	renderer display.Renderer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	// editTarget is the advisory an edit instruction is being typed for.
	editTarget string
	toasts     []models.Notification
	status     string
	backendURL string

	width, height int
	ready         bool
	quitting      bool
}

func newChatModel(ctx context.Context, store *chat.Store, poller *notify.Poller, logger *zap.Logger, backendURL string) chatModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	in := textinput.New()
	in.Placeholder = sendPlaceholder
	in.Prompt = "› "
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = inProgressStyle

	return chatModel{
		ctx:        ctx,
		store:      store,
		poller:     poller,
		logger:     logger,
		renderer:   display.Renderer{DecisionHint: tuiDecisionHint},
		input:      in,
		viewport:   viewport.New(80, 20),
		spinner:    sp,
		backendURL: backendURL,
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bootstrap())
}

func (m chatModel) bootstrap() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return bootstrapMsg{err: store.Bootstrap(ctx)}
	}
}

func (m chatModel) complete(turn *chat.Turn) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		msg, err := turn.Complete(ctx)
		return turnDoneMsg{msg: msg, err: err}
	}
}

func (m chatModel) newSession() tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return sessionResetMsg{err: store.NewSession(ctx)}
	}
}

func (m chatModel) markRead(ids []string) tea.Cmd {
	poller, ctx := m.poller, m.ctx
	return func() tea.Msg {
		return markedReadMsg{ids: ids, err: poller.MarkRead(ctx, ids)}
	}
}

// Update handles messages
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.store.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case turnDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, chat.ErrStaleReply) {
			m.status = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case bootstrapMsg:
		if msg.err != nil && !errors.Is(msg.err, chat.ErrStaleReply) {
			m.status = "could not open a session: " + msg.err.Error()
		} else if msg.err == nil {
			m.status = "session " + m.store.SessionID()
		}
		return m, nil

	case sessionResetMsg:
		m.editTarget = ""
		m.resetInput()
		if msg.err != nil {
			m.status = "new session could not be opened: " + msg.err.Error()
		} else {
			m.status = "new session " + m.store.SessionID()
		}
		m.refresh()
		return m, nil

	case notificationsMsg:
		m.toasts = []models.Notification(msg)
		m.layout()
		return m, nil

	case markedReadMsg:
		if msg.err != nil {
			m.status = "mark read failed: " + msg.err.Error()
		} else {
			m.toasts = m.poller.Current()
			m.status = fmt.Sprintf("marked %d notification(s) read", len(msg.ids))
		}
		m.layout()
		return m, nil

	case configChangedMsg:
		m.backendURL = msg.BackendURL
		m.status = "configuration reloaded"
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEnter:
		return m.submit()

	case tea.KeyEsc:
		if m.editTarget != "" {
			m.editTarget = ""
			m.resetInput()
			m.status = "edit cancelled"
		} else if len(m.toasts) > 0 {
			m.toasts = nil
			m.layout()
		}
		return m, nil

	case tea.KeyCtrlN:
		m.status = "starting a new session…"
		return m, m.newSession()

	case tea.KeyCtrlS:
		pending, ok := m.store.PendingAdvisory()
		if !ok {
			m.status = "no advisory is waiting for a decision"
			return m, nil
		}
		turn, err := m.store.BeginApprove(pending.ID)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		m.refresh()
		return m, tea.Batch(m.spinner.Tick, m.complete(turn))

	case tea.KeyCtrlE:
		pending, ok := m.store.PendingAdvisory()
		if !ok {
			m.status = "no advisory is waiting for a decision"
			return m, nil
		}
		m.editTarget = pending.ID
		m.input.Reset()
		m.input.Placeholder = editPlaceholder
		m.status = "editing advisory"
		return m, nil

	case tea.KeyCtrlX:
		m.renderer.Expanded = !m.renderer.Expanded
		m.refresh()
		return m, nil

	case tea.KeyCtrlR:
		if m.poller == nil || len(m.toasts) == 0 {
			return m, nil
		}
		return m, m.markRead(notify.IDs(m.toasts))

	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	var (
		turn *chat.Turn
		err  error
	)
	if m.editTarget != "" {
		turn, err = m.store.BeginEdit(m.editTarget, text)
	} else {
		turn, err = m.store.BeginSend(text)
	}
	switch {
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrBusy):
		return m, nil
	case err != nil:
		m.status = err.Error()
		return m, nil
	}

	m.editTarget = ""
	m.status = ""
	m.resetInput()
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, m.complete(turn))
}

func (m *chatModel) resetInput() {
	m.input.Reset()
	m.input.Placeholder = sendPlaceholder
}

// layout sizes the viewport around the header, toasts and footer.
func (m *chatModel) layout() {
	if !m.ready {
		return
	}
	reserved := lipgloss.Height(m.headerView()) + lipgloss.Height(m.footerView())
	if t := m.toastView(); t != "" {
		reserved += lipgloss.Height(t)
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(3, m.height-reserved)
	m.renderer.Width = max(20, m.width-2)
}

// refresh re-renders the transcript and scrolls to the newest message.
func (m *chatModel) refresh() {
	msgs := m.store.Messages()
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderer.Render(msg))
	}
	m.viewport.SetContent(strings.Join(parts, "\n"))
	m.viewport.GotoBottom()
}

func (m chatModel) headerView() string {
	return titleStyle.Render("💼 WealthGo") + statusBarStyle.Render(" "+m.backendURL)
}

func (m chatModel) toastView() string {
	if len(m.toasts) == 0 {
		return ""
	}
	n := m.toasts[0]
	body := notify.Format(n, time.Local)
	if extra := len(m.toasts) - 1; extra > 0 {
		body += fmt.Sprintf("\n   +%d more", extra)
	}
	return toastStyle.Render(body)
}

func (m chatModel) footerView() string {
	status := m.status
	if m.store.Loading() {
		status = m.spinner.View() + " waiting for the assistant…"
	}
	keys := keyHelp("enter", "send", "ctrl+s", "save", "ctrl+e", "edit", "ctrl+x", "details",
		"ctrl+n", "new session", "ctrl+r", "mark read", "ctrl+c", "quit")
	line := m.input.View()
	if m.editTarget != "" {
		line = errorStyle.Render("✎ ") + line
	}
	return line + "\n" + statusBarStyle.Render(status) + "\n" + keys
}

// View renders the model
func (m chatModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading…"
	}
	sections := []string{m.headerView(), m.viewport.View()}
	if t := m.toastView(); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections, m.footerView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func runChatTUI(cmd *cobra.Command) error {
	app, err := newApp(cmd, appOptions{logToFile: true})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	store := app.NewChatStore()
	poller := notify.NewPoller(app.API, app.Config.ClientID,
		notify.WithInterval(app.Config.NotificationInterval()),
		notify.WithLogger(app.Logger.Named("notify")))

	model := newChatModel(ctx, store, poller, app.Logger, app.Config.BackendURL)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		_ = poller.Run(ctx, func(ns []models.Notification) { p.Send(notificationsMsg(ns)) })
	}()
	if err := app.Manager.Watch(ctx, func(cfg config.Config) {
		app.API.SetBaseURL(cfg.BackendURL)
		app.Logger.Info("configuration reloaded", zap.String("backend_url", cfg.BackendURL))
		p.Send(configChangedMsg(cfg))
	}); err != nil {
		app.Logger.Warn("config watch unavailable", zap.Error(err))
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}
