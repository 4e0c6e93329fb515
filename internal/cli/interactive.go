package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dyike/WealthGo/internal/chat"
	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/models"
)

const plainDecisionHint = "/save to keep it · /edit <instruction> to request changes"

// InteractiveSession handles the line-based chat
type InteractiveSession struct {
	app      *App
	store    *chat.Store
	reader   *bufio.Reader
	out      io.Writer
	renderer display.Renderer
	// shown is how many store messages have been printed.
	shown int
}

// NewInteractiveSession creates a new interactive session
func NewInteractiveSession(app *App, store *chat.Store, reader *bufio.Reader) *InteractiveSession {
	return &InteractiveSession{
		app:      app,
		store:    store,
		reader:   reader,
		out:      app.Out,
		renderer: display.Renderer{Width: transcriptWidth, DecisionHint: plainDecisionHint},
	}
}

// Start opens a backend session and runs the loop until exit or EOF.
func (s *InteractiveSession) Start(ctx context.Context) error {
	DisplayWelcomeBanner(s.out)
	if err := s.store.Bootstrap(ctx); err != nil {
		display.DisplayWarning(fmt.Sprintf("could not open a session, decisions are unavailable: %v", err))
	}
	s.flush()
	s.showCommands()
	return s.runMainLoop(ctx)
}

func (s *InteractiveSession) showCommands() {
	fmt.Fprintln(s.out, "💡 Commands:")
	fmt.Fprintln(s.out, "   <text>              - Ask the assistant")
	fmt.Fprintln(s.out, "   /save               - Save the pending advisory")
	fmt.Fprintln(s.out, "   /edit <instruction> - Request a revision of the pending advisory")
	fmt.Fprintln(s.out, "   /decide             - Choose save or edit from a menu")
	fmt.Fprintln(s.out, "   /expand             - Toggle fact-check details in news replies")
	fmt.Fprintln(s.out, "   /new                - Start a new session")
	fmt.Fprintln(s.out, "   /clear              - Clear screen")
	fmt.Fprintln(s.out, "   /exit               - Leave")
	fmt.Fprintln(s.out)
}

// runMainLoop runs the main interactive loop
func (s *InteractiveSession) runMainLoop(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, "💬 You> ")

		input, err := s.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		if input != "" {
			if quit := s.handle(ctx, input); quit {
				return nil
			}
		}
		if eof {
			fmt.Fprintln(s.out)
			return nil
		}
	}
}

// handle runs one line and reports whether the session should end.
func (s *InteractiveSession) handle(ctx context.Context, input string) bool {
	if !strings.HasPrefix(input, "/") {
		s.send(ctx, input)
		return false
	}

	command, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(command) {
	case "/exit", "/quit", "/q":
		fmt.Fprintln(s.out, "👋 Goodbye!")
		return true

	case "/help", "/h", "/?":
		s.showCommands()

	case "/save":
		s.approve(ctx)

	case "/edit":
		if rest == "" {
			instruction, err := PromptForEditInstruction()
			if err != nil {
				display.DisplayWarning(err.Error())
				return false
			}
			rest = instruction
		}
		s.requestEdit(ctx, rest)

	case "/decide":
		s.decide(ctx)

	case "/expand":
		s.renderer.Expanded = !s.renderer.Expanded
		display.DisplayInfo(fmt.Sprintf("Fact-check details expanded: %t", s.renderer.Expanded))

	case "/new":
		if err := s.store.NewSession(ctx); err != nil {
			display.DisplayWarning(fmt.Sprintf("new session could not be opened: %v", err))
		}
		s.shown = 0
		s.flush()

	case "/clear", "/cls":
		ClearScreen(s.out)

	default:
		fmt.Fprintf(s.out, "❌ Unknown command: %s. Type /help for available commands.\n", command)
	}
	return false
}

func (s *InteractiveSession) send(ctx context.Context, text string) {
	turn, err := s.store.BeginSend(text)
	if err != nil {
		display.DisplayWarning(err.Error())
		return
	}
	s.complete(ctx, turn)
}

func (s *InteractiveSession) approve(ctx context.Context) {
	msg, ok := s.pending()
	if !ok {
		return
	}
	turn, err := s.store.BeginApprove(msg.ID)
	if err != nil {
		display.DisplayWarning(err.Error())
		return
	}
	s.complete(ctx, turn)
}

func (s *InteractiveSession) requestEdit(ctx context.Context, instruction string) {
	msg, ok := s.pending()
	if !ok {
		return
	}
	turn, err := s.store.BeginEdit(msg.ID, instruction)
	if err != nil {
		display.DisplayWarning(err.Error())
		return
	}
	s.complete(ctx, turn)
}

func (s *InteractiveSession) decide(ctx context.Context) {
	msg, ok := s.pending()
	if !ok {
		return
	}
	entity := "this client"
	if msg.Meta.Advice != nil && msg.Meta.Advice.EntityName != "" {
		entity = msg.Meta.Advice.EntityName
	}
	choice, err := PromptForDecision(entity)
	if err != nil {
		display.DisplayWarning(err.Error())
		return
	}
	switch choice {
	case choiceSave:
		s.approve(ctx)
	case choiceEdit:
		instruction, err := PromptForEditInstruction()
		if err != nil {
			display.DisplayWarning(err.Error())
			return
		}
		s.requestEdit(ctx, instruction)
	}
}

func (s *InteractiveSession) pending() (models.ChatMessage, bool) {
	msg, ok := s.store.PendingAdvisory()
	if !ok {
		display.DisplayInfo("No advisory is waiting for a decision")
	}
	return msg, ok
}

// complete prints the optimistic state, waits for the reply and prints it.
func (s *InteractiveSession) complete(ctx context.Context, turn *chat.Turn) {
	s.flush()
	fmt.Fprintln(s.out, inProgressStyle.Render("⏳ Thinking..."))
	if _, err := turn.Complete(ctx); err != nil {
		display.DisplayWarning(err.Error())
	}
	s.flush()
}

// flush prints store messages not yet shown.
func (s *InteractiveSession) flush() {
	msgs := s.store.Messages()
	for _, m := range msgs[min(s.shown, len(msgs)):] {
		if m.Sender == models.SenderUser {
			continue
		}
		fmt.Fprintln(s.out, s.renderer.Render(m))
	}
	s.shown = len(msgs)
}
