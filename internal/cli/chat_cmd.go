package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyike/WealthGo/internal/display"
	"github.com/dyike/WealthGo/internal/storage"
)

const transcriptWidth = 100

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the advisory assistant",
		Long: `Start a chat session. By default this opens the full-screen chat; --plain
uses a line-based prompt that works in any terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, _ := cmd.Flags().GetBool("plain")
			if plain {
				return runPlainChat(cmd)
			}
			return runChatTUI(cmd)
		},
	}
	cmd.Flags().Bool("plain", false, "Use the line-based prompt instead of the full-screen chat")
	return cmd
}

func runPlainChat(cmd *cobra.Command) error {
	app, err := newApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	session := NewInteractiveSession(app, app.NewChatStore(), bufio.NewReader(cmd.InOrStdin()))
	return session.Start(commandContext(cmd))
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask TEXT",
		Short: "Send one message and print the reply",
		Example: `  wealthgo ask "news about Jane Doe"
  wealthgo ask "advise on Jane Doe" --expand`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expand, _ := cmd.Flags().GetBool("expand")
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := commandContext(cmd)
			store := app.NewChatStore()
			if err := store.Bootstrap(ctx); err != nil {
				display.DisplayWarning(fmt.Sprintf("could not open a session: %v", err))
			}
			reply, err := store.Send(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			r := display.Renderer{Width: transcriptWidth, Expanded: expand, DecisionHint: "run `wealthgo chat` to save or request an edit"}
			fmt.Fprintln(app.Out, r.Render(reply))
			if reply.RequiresEscalation {
				return fmt.Errorf("backend request failed")
			}
			return nil
		},
	}
	cmd.Flags().Bool("expand", false, "Expand fact-check sections in news replies")
	return cmd
}

func newSessionCmd() *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage backend chat sessions",
	}

	sessionCmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Open a new backend session and print its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()
			id, err := app.API.Welcome(commandContext(cmd))
			if err != nil {
				display.DisplayError(err, "session new")
				return err
			}
			fmt.Fprintln(app.Out, id)
			return nil
		},
	})

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a backend session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			if !yes {
				ok, err := PromptForConfirmation(fmt.Sprintf("Delete session %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					display.DisplayInfo("Cancelled")
					return nil
				}
			}
			if err := app.API.DeleteSession(commandContext(cmd), args[0]); err != nil {
				display.DisplayError(err, "session delete")
				return err
			}
			display.DisplaySuccess(fmt.Sprintf("Session %s deleted", args[0]))
			return nil
		},
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	sessionCmd.AddCommand(deleteCmd)

	return sessionCmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [SESSION_ID]",
		Short: "Show the local chat transcript",
		Long: `Without arguments, list recorded sessions newest first. With a session id,
replay that session's messages. Requires history_enabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			app, err := newApp(cmd, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			store, err := storage.OpenHistory(&app.Config)
			if err != nil {
				if errors.Is(err, storage.ErrHistoryDisabled) {
					display.DisplayInfo(err.Error())
					return nil
				}
				return err
			}
			defer store.Close()

			ctx := commandContext(cmd)
			if len(args) == 0 {
				sessions, err := store.ListSessions(ctx, 0, limit)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					display.DisplayEmpty("No recorded sessions")
					return nil
				}
				fmt.Fprintln(app.Out, titleStyle.Render("📜 Chat History"))
				for _, s := range sessions {
					title := s.Title
					if title == "" {
						title = "(no user messages)"
					}
					fmt.Fprintf(app.Out, "%s  %s  %3d msgs  %s\n",
						s.UpdatedAt.Local().Format("2006-01-02 15:04"), s.ID, s.MessageCount, title)
				}
				return nil
			}

			msgs, err := store.ListMessages(ctx, args[0])
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				display.DisplayEmpty(fmt.Sprintf("No messages recorded for %s", args[0]))
				return nil
			}
			r := display.Renderer{Width: transcriptWidth}
			for _, m := range msgs {
				fmt.Fprintln(app.Out, r.Render(m))
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Number of sessions to list")
	return cmd
}
