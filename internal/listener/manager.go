package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pixil98/go-texter/internal"
	"github.com/pixil98/go-texter/internal/commands"
	"github.com/pixil98/go-texter/internal/logfields"
)

const (
	maxNameLength = 32
	namePrompt    = "Name: "
	linePrompt    = "> "
	reservedName  = "That name is reserved for operators, log in over ssh with your key to use it.\n"
)

// Executor runs console commands. Exec is only called from the main loop.
type Executor interface {
	Actor(name string, verified bool) commands.Actor
	Exec(ctx context.Context, actor commands.Actor, line string) (string, error)
	Reserved(name string) bool
}

// Identity is the console user a connection speaks for. Verified is set only
// when the listener authenticated the name.
type Identity struct {
	Name     string
	Verified bool
}

// DoFunc runs fn on the main loop and waits for it.
type DoFunc func(ctx context.Context, fn func(context.Context) error) error

// ConnectionManager runs a console session on each accepted connection.
type ConnectionManager struct {
	exec Executor
	do   DoFunc
}

func NewConnectionManager(exec Executor, do DoFunc) *ConnectionManager {
	return &ConnectionManager{
		exec: exec,
		do:   do,
	}
}

// AcceptConnection serves conn until the peer quits or disconnects. An empty
// or unverified reserved name is asked for a name first.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter, id Identity) {
	err := m.runSession(ctx, conn, id)
	if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
		slog.WarnContext(ctx, "console session", logfields.Error(err))
	}
}

func (m *ConnectionManager) runSession(ctx context.Context, conn io.ReadWriter, id Identity) error {
	br := bufio.NewReader(conn)

	if !id.Verified && id.Name != "" && m.exec.Reserved(id.Name) {
		slog.WarnContext(ctx, "unverified login with reserved name", logfields.User(id.Name))
		_, err := io.WriteString(conn, reservedName)
		if err != nil {
			return err
		}
		id.Name = ""
	}

	if id.Name == "" {
		name, err := internal.Prompt(br, conn, namePrompt,
			internal.WithValidator(m.validateName),
			internal.WithMaxTries(3),
		)
		if err != nil {
			return err
		}
		id = Identity{Name: strings.TrimSpace(name)}
	}

	actor := m.exec.Actor(id.Name, id.Verified)
	slog.InfoContext(ctx, "console session started", logfields.User(actor.Name))
	defer slog.InfoContext(ctx, "console session ended", logfields.User(actor.Name))

	_, err := fmt.Fprintf(conn, "Hello %s. Type 'help' for commands, 'quit' to leave.\n", actor.Name)
	if err != nil {
		return err
	}

	for {
		line, err := internal.Prompt(br, conn, linePrompt)
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			_, err = io.WriteString(conn, "Bye.\n")
			return err
		}

		out, err := m.run(ctx, actor, line)
		if err != nil {
			var ue *commands.UserError
			if !errors.As(err, &ue) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.ErrorContext(ctx, "running command", logfields.User(actor.Name), logfields.Error(err))
				out = "Something went wrong, the change was not saved."
			} else {
				out = ue.Message
			}
		}

		if out != "" {
			_, err = io.WriteString(conn, out+"\n")
			if err != nil {
				return err
			}
		}
	}
}

func (m *ConnectionManager) run(ctx context.Context, actor commands.Actor, line string) (string, error) {
	var out string
	err := m.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = m.exec.Exec(ctx, actor, line)
		return err
	})
	return out, err
}

func (m *ConnectionManager) validateName(s string) (bool, string) {
	ok, msg := validateName(s)
	if ok && m.exec.Reserved(strings.TrimSpace(s)) {
		return false, reservedName
	}
	return ok, msg
}

func validateName(s string) (bool, string) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return false, "A name is required.\n"
	case len(s) > maxNameLength:
		return false, fmt.Sprintf("Names are at most %d characters.\n", maxNameLength)
	case strings.IndexFunc(s, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0:
		return false, "Names cannot contain spaces.\n"
	}
	return true, ""
}
