package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Rrens/tutor-chat/internal/domain"
	"github.com/Rrens/tutor-chat/internal/export"
	"github.com/Rrens/tutor-chat/internal/service"
	"github.com/Rrens/tutor-chat/internal/tutor"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive tutoring chat",
	Long: `Starts an interactive chat. Type a message to talk to the tutor.

Commands:
  /new              start a new conversation
  /list [query]     list saved conversations
  /load <id>        reopen a saved conversation
  /export [format]  save the current conversation (text, markdown, json, yaml)
  /quit             leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context(), cmd.OutOrStdout())
	},
}

const (
	helpText      = "Commands: /new, /list [query], /load <id>, /export [format], /help, /quit"
	skippedNotice = "Conversation reloaded. That message was not sent; send it again to continue."
)

func runChat(ctx context.Context, out io.Writer) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	settings := llmSettings()
	if err := a.Chat.ValidateProvider(ctx, settings); err != nil {
		return fmt.Errorf("provider %s is not usable: %w", settings.Provider, err)
	}

	r := &repl{
		chat: a.Chat,
		sess: tutor.NewSessionWith(settings),
		sink: newTerminalSink(out, noColor),
	}
	r.sink.info("Tutor ready (%s). %s", settings.Provider, helpText)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, r.sink.style(userStyle, "> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		quit, err := r.handle(ctx, scanner.Text())
		if err != nil {
			r.sink.Notice(tutor.NoticeError, err.Error())
		}
		if quit {
			return nil
		}
	}
}

type repl struct {
	chat *service.ChatService
	sess *tutor.Session
	sink *terminalSink
}

// handle runs one line of input and reports whether the user asked to quit
func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	name, arg, isCommand := parseCommand(line)
	if !isCommand {
		return false, r.submit(ctx, line)
	}

	switch name {
	case "quit", "exit", "q":
		return true, nil
	case "help":
		r.sink.info(helpText)
	case "new":
		r.chat.Reset(r.sess)
		r.sink.info("Started a new conversation.")
	case "list":
		return false, r.list(ctx, arg)
	case "load":
		return false, r.load(ctx, arg)
	case "export":
		return false, r.export(ctx, arg)
	default:
		return false, fmt.Errorf("unknown command /%s. %s", name, helpText)
	}
	return false, nil
}

// submit runs one turn. Ctrl-C cancels the reply without leaving the chat.
func (r *repl) submit(ctx context.Context, input string) error {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	result, err := r.chat.Submit(turnCtx, r.sess, input, r.sink)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case service.OutcomeCancelled:
		r.sink.Notice(tutor.NoticeWarning, "Reply cancelled.")
	case service.OutcomeSkipped:
		r.sink.Notice(tutor.NoticeWarning, skippedNotice)
	}
	return nil
}

func (r *repl) list(ctx context.Context, query string) error {
	conversations, err := r.chat.SearchConversations(ctx, query)
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		r.sink.info("No saved conversations.")
		return nil
	}
	for _, c := range conversations {
		r.sink.info("%s", conversationLine(c))
	}
	return nil
}

func (r *repl) load(ctx context.Context, arg string) error {
	id, err := uuid.Parse(arg)
	if err != nil {
		return fmt.Errorf("usage: /load <conversation id>")
	}

	if err := r.chat.Reload(ctx, r.sess, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("conversation %s not found", id)
		}
		return err
	}
	r.chat.Replay(r.sess, r.sink)
	return nil
}

func (r *repl) export(ctx context.Context, arg string) error {
	if r.sess.ConversationID == nil {
		return errors.New("nothing to export yet")
	}

	format := export.FormatText
	if arg != "" {
		f, err := export.ParseFormat(arg)
		if err != nil {
			return err
		}
		format = f
	}

	path, err := exportToFile(ctx, r.chat, *r.sess.ConversationID, format, ".")
	if err != nil {
		return err
	}
	r.sink.info("Saved %s", path)
	return nil
}

// parseCommand splits "/name arg" input. Plain messages are not commands.
func parseCommand(line string) (name, arg string, ok bool) {
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	name, arg, _ = strings.Cut(strings.TrimPrefix(line, "/"), " ")
	return strings.ToLower(name), strings.TrimSpace(arg), name != ""
}

func conversationLine(c domain.Conversation) string {
	return fmt.Sprintf("%s  %s  %s", c.ID, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.Title)
}
