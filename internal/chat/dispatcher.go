// Package chat turns chat commands into lookups and formats the replies. It is
// shared by the Telegram bot, the one-shot CLI commands and the terminal shell.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/lepinkainen/bookbot/internal/catalog"
	"github.com/lepinkainen/bookbot/internal/lookup"
	"github.com/lepinkainen/bookbot/internal/metrics"
)

// Command names, without the leading slash.
const (
	CommandStart  = "start"
	CommandHelp   = "help"
	CommandFind   = "find"
	CommandAuthor = "author"
	CommandRandom = "random"
)

var (
	// ErrNotCommand is returned for text that does not start with a slash.
	ErrNotCommand = errors.New("not a command")
	// ErrUnknownCommand is returned for commands the bot does not handle.
	ErrUnknownCommand = errors.New("unknown command")
)

// Command outcomes recorded in metrics.
const (
	resultOK       = "ok"
	resultUsage    = "usage"
	resultNotFound = "not_found"
	resultError    = "error"
	resultPanic    = "panic"
)

// Lookup is the part of lookup.Service the dispatcher needs.
type Lookup interface {
	SearchTitle(ctx context.Context, title string) lookup.TitleResult
	SearchAuthor(ctx context.Context, author string) lookup.AuthorResult
	PickRandom(ctx context.Context) (catalog.Book, bool)
}

// Replier sends one message back to wherever the command came from.
type Replier func(ctx context.Context, text string) error

type request struct {
	args   []string
	reply  Replier
	logger *slog.Logger
}

// query joins the arguments with single spaces.
func (r request) query() string {
	return strings.Join(r.args, " ")
}

type handler struct {
	run       func(d *Dispatcher, ctx context.Context, req request) (string, error)
	errorText string
}

var handlers = map[string]handler{
	CommandStart:  {run: (*Dispatcher).start, errorText: startErrorText},
	CommandHelp:   {run: (*Dispatcher).help, errorText: genericError},
	CommandFind:   {run: (*Dispatcher).find, errorText: searchErrorText},
	CommandAuthor: {run: (*Dispatcher).author, errorText: searchErrorText},
	CommandRandom: {run: (*Dispatcher).random, errorText: genericError},
}

// Dispatcher routes commands to their handlers.
type Dispatcher struct {
	lookup Lookup
}

// NewDispatcher creates a Dispatcher backed by l.
func NewDispatcher(l Lookup) *Dispatcher {
	return &Dispatcher{lookup: l}
}

// ParseCommand splits "/find@SomeBot war and peace" into "find" and its
// whitespace-separated arguments. ok is false when text is not a command.
func ParseCommand(text string) (command string, args []string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}

	command = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	if command == "" {
		return "", nil, false
	}
	return strings.ToLower(command), fields[1:], true
}

// Handle parses text and runs the command it names.
func (d *Dispatcher) Handle(ctx context.Context, text string, reply Replier) error {
	command, args, ok := ParseCommand(text)
	if !ok {
		return ErrNotCommand
	}
	return d.Run(ctx, command, args, reply)
}

// Run executes command with args, sending every reply through reply. A failing
// or panicking handler is answered with the command's error text.
func (d *Dispatcher) Run(ctx context.Context, command string, args []string, reply Replier) (err error) {
	h, ok := handlers[command]
	if !ok {
		return fmt.Errorf("%w: /%s", ErrUnknownCommand, command)
	}

	logger := slog.With("request_id", uuid.NewString(), "command", command)
	logger.Info("Handling command", "args", len(args))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Command panicked", "panic", r, "stack", string(debug.Stack()))
			metrics.ObserveCommand(command, resultPanic)
			err = errors.Join(fmt.Errorf("/%s panicked: %v", command, r), reply(ctx, h.errorText))
		}
	}()

	result, err := h.run(d, ctx, request{args: args, reply: reply, logger: logger})
	if err != nil {
		logger.Error("Command failed", "error", err)
		metrics.ObserveCommand(command, resultError)
		return errors.Join(err, reply(ctx, h.errorText))
	}

	metrics.ObserveCommand(command, result)
	logger.Debug("Command handled", "result", result)
	return nil
}

func (d *Dispatcher) start(ctx context.Context, req request) (string, error) {
	return resultOK, req.reply(ctx, startText)
}

func (d *Dispatcher) help(ctx context.Context, req request) (string, error) {
	return resultOK, req.reply(ctx, helpText)
}

func (d *Dispatcher) find(ctx context.Context, req request) (string, error) {
	if len(req.args) == 0 {
		return resultUsage, req.reply(ctx, findUsageText)
	}

	title := req.query()
	if err := req.reply(ctx, fmt.Sprintf(searchingTitleFormat, title)); err != nil {
		return "", err
	}

	res := d.lookup.SearchTitle(ctx, title)
	if len(res.Books) == 0 {
		req.logger.Info("No books found", "title", title)
		return resultNotFound, req.reply(ctx, fmt.Sprintf(titleNotFoundFormat, title))
	}

	req.logger.Info("Books found", "title", title, "total", res.Total)
	return resultOK, req.reply(ctx, FormatTitleResult(res))
}

func (d *Dispatcher) author(ctx context.Context, req request) (string, error) {
	if len(req.args) == 0 {
		return resultUsage, req.reply(ctx, authorUsageText)
	}

	author := req.query()
	if err := req.reply(ctx, fmt.Sprintf(searchingAuthorFormat, author)); err != nil {
		return "", err
	}

	res := d.lookup.SearchAuthor(ctx, author)
	if len(res.Books) == 0 {
		req.logger.Info("No books found", "author", author)
		return resultNotFound, req.reply(ctx, fmt.Sprintf(authorNotFoundFormat, author))
	}

	req.logger.Info("Books found", "author", author, "total", res.Total, "source", res.Source)
	return resultOK, req.reply(ctx, FormatAuthorResult(author, res))
}

func (d *Dispatcher) random(ctx context.Context, req request) (string, error) {
	if err := req.reply(ctx, pickingRandomText); err != nil {
		return "", err
	}

	book, ok := d.lookup.PickRandom(ctx)
	if !ok {
		return resultNotFound, req.reply(ctx, randomNotFoundText)
	}

	req.logger.Info("Random book picked", "title", book.Title, "source", book.Source)
	return resultOK, req.reply(ctx, FormatRandomBook(book))
}
