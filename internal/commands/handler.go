package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pixil98/go-texter/internal/display"
	"github.com/pixil98/go-texter/internal/texts"
)

// Actor is the console user running a command.
type Actor struct {
	Name     string
	Operator bool
}

// CommandFunc runs one subcommand and returns the text to show the actor.
type CommandFunc func(ctx context.Context, actor Actor, args []string) (string, error)

type subcommand struct {
	usage   string
	minArgs int
	run     CommandFunc
}

// Handler executes console commands against the floating text registries. It
// must only be called from the main loop.
type Handler struct {
	texts     *texts.Registries
	operators map[string]bool
	subs      map[string]*subcommand
}

func NewHandler(rs *texts.Registries, operators []string) *Handler {
	h := &Handler{
		texts:     rs,
		operators: make(map[string]bool, len(operators)),
	}
	for _, op := range operators {
		h.operators[strings.ToLower(op)] = true
	}

	h.subs = map[string]*subcommand{
		"add":    {usage: "txt add <zone> <name> <x> <y> <z> <title> [| <text>]", minArgs: 6, run: h.add},
		"edit":   {usage: "txt edit <zone> <name> title|text <value>", minArgs: 4, run: h.edit},
		"move":   {usage: "txt move <zone> <name> <x> <y> <z>", minArgs: 5, run: h.move},
		"remove": {usage: "txt remove <zone> <name>", minArgs: 2, run: h.remove},
		"list":   {usage: "txt list [zone]", minArgs: 0, run: h.list},
	}
	return h
}

// Actor builds the actor for a console user name. Operator rights are only
// granted to verified names.
func (h *Handler) Actor(name string, verified bool) Actor {
	return Actor{Name: name, Operator: verified && h.Reserved(name)}
}

// Reserved reports whether name belongs to an operator. It is safe to call
// from any goroutine.
func (h *Handler) Reserved(name string) bool {
	return h.operators[strings.ToLower(name)]
}

// Exec parses and runs one command line.
func (h *Handler) Exec(ctx context.Context, actor Actor, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	switch strings.ToLower(fields[0]) {
	case "help":
		return h.help(), nil
	case "txt":
	default:
		return "", userErrorf("Unknown command: %s", fields[0])
	}

	if len(fields) < 2 {
		return "", NewUserError(h.help())
	}

	sub, ok := h.subs[strings.ToLower(fields[1])]
	if !ok {
		return "", userErrorf("Unknown subcommand: %s", fields[1])
	}

	args := fields[2:]
	if len(args) < sub.minArgs {
		return "", userErrorf("Usage: %s", sub.usage)
	}

	return sub.run(ctx, actor, args)
}

func (h *Handler) help() string {
	names := make([]string, 0, len(h.subs))
	for name := range h.subs {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	sb.WriteString("Commands:")
	for _, name := range names {
		sb.WriteString("\n  ")
		sb.WriteString(h.subs[name].usage)
	}
	sb.WriteString("\n  help")
	return sb.String()
}

func (h *Handler) add(_ context.Context, actor Actor, args []string) (string, error) {
	zone, name := args[0], args[1]
	if _, ok := h.texts.Lookup(zone, name); ok {
		return "", userErrorf("%s/%s already exists", zone, name)
	}

	pos, err := parsePosition(args[2:5])
	if err != nil {
		return "", err
	}

	title, body, _ := strings.Cut(strings.Join(args[5:], " "), "|")

	ft := texts.FloatingText{
		Name:      name,
		Zone:      zone,
		Position:  pos,
		Title:     strings.TrimSpace(title),
		Body:      strings.TrimSpace(body),
		Owner:     actor.Name,
		Removable: true,
	}
	err = h.store(ft)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Created %s at %s.", ft.Key(), ft.Position), nil
}

func (h *Handler) edit(_ context.Context, actor Actor, args []string) (string, error) {
	ft, err := h.modifiable(actor, args[0], args[1])
	if err != nil {
		return "", err
	}

	value := strings.Join(args[3:], " ")
	switch strings.ToLower(args[2]) {
	case "title":
		ft.Title = value
	case "text":
		ft.Body = value
	default:
		return "", userErrorf("Can only edit title or text, not %q", args[2])
	}

	err = h.store(ft)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Updated %s.", ft.Key()), nil
}

func (h *Handler) move(_ context.Context, actor Actor, args []string) (string, error) {
	ft, err := h.modifiable(actor, args[0], args[1])
	if err != nil {
		return "", err
	}

	if len(args) > 5 {
		return "", userErrorf("Usage: %s", h.subs["move"].usage)
	}

	ft.Position, err = parsePosition(args[2:5])
	if err != nil {
		return "", err
	}

	err = h.store(ft)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Moved %s to %s.", ft.Key(), ft.Position), nil
}

func (h *Handler) remove(_ context.Context, actor Actor, args []string) (string, error) {
	ft, err := h.modifiable(actor, args[0], args[1])
	if err != nil {
		return "", err
	}

	_, err = h.texts.Removable.Remove(ft.Zone, ft.Name)
	if err != nil {
		return "", fmt.Errorf("removing %s: %w", ft.Key(), err)
	}

	return fmt.Sprintf("Removed %s.", ft.Key()), nil
}

func (h *Handler) list(_ context.Context, _ Actor, args []string) (string, error) {
	all := h.texts.ListAll()
	if len(args) > 0 {
		zone := args[0]
		all = slices.DeleteFunc(all, func(ft texts.FloatingText) bool {
			return ft.Zone != zone
		})
	}

	if len(all) == 0 {
		return "No floating texts.", nil
	}

	out, err := ExpandTemplate(listTemplate, all)
	if err != nil {
		return "", fmt.Errorf("rendering list: %w", err)
	}

	return display.Wrap(strings.TrimPrefix(out, "\n")), nil
}

// modifiable returns the text at zone/name if actor may change it.
func (h *Handler) modifiable(actor Actor, zone, name string) (texts.FloatingText, error) {
	ft, ok := h.texts.Lookup(zone, name)
	if !ok {
		return ft, userErrorf("No floating text %s/%s", zone, name)
	}
	if !ft.Removable {
		return ft, userErrorf("%s cannot be changed in game", ft.Key())
	}
	if !actor.Operator && ft.Owner != actor.Name {
		return ft, userErrorf("You do not own %s", ft.Key())
	}
	return ft, nil
}

// store persists ft, turning validation failures into user errors.
func (h *Handler) store(ft texts.FloatingText) error {
	err := h.texts.Add(ft)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, texts.ErrInvalidText), errors.Is(err, texts.ErrOwnedByOther):
		return NewUserError(display.Capitalize(err.Error()))
	default:
		return fmt.Errorf("saving %s: %w", ft.Key(), err)
	}
}

func parsePosition(args []string) (texts.Position, error) {
	var coords [3]float64
	for i, raw := range args {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return texts.Position{}, userErrorf("%q is not a valid coordinate", raw)
		}
		coords[i] = f
	}
	return texts.Position{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
