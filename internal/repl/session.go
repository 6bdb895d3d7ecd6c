// Package repl drives the diagram controller from an interactive terminal.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"flowview/internal/menu"
	"flowview/internal/service"
	"flowview/internal/ui"
)

// ErrExit is returned by ExecuteCommand when the user asks to leave
var ErrExit = fmt.Errorf("exit requested: %w", io.EOF)

// Session reads commands and runs them against a controller
type Session struct {
	d       *service.Dispatcher
	term    *Terminal
	out     io.Writer
	timeout time.Duration
}

// NewSession creates a session driving the controller behind d. term must be
// the renderer the controller draws on.
func NewSession(d *service.Dispatcher, term *Terminal, out io.Writer) *Session {
	return &Session{d: d, term: term, out: out, timeout: 5 * time.Second}
}

// Completer returns tab completion for the session's commands
func Completer() *readline.PrefixCompleter {
	onOff := []readline.PrefixCompleterInterface{readline.PcItem("on"), readline.PcItem("off")}
	return readline.NewPrefixCompleter(
		readline.PcItem("click"),
		readline.PcItem("dblclick"),
		readline.PcItem("bg"),
		readline.PcItem("zoom"),
		readline.PcItem("key",
			readline.PcItem("up"), readline.PcItem("down"),
			readline.PcItem("left"), readline.PcItem("right"),
			readline.PcItem("esc"), readline.PcItem("ctrl+up"), readline.PcItem("ctrl+down"),
		),
		readline.PcItem("menu"),
		readline.PcItem("invoke"),
		readline.PcItem("names", onOff...),
		readline.PcItem("params", onOff...),
		readline.PcItem("prohibit", onOff...),
		readline.PcItem("select"),
		readline.PcItem("reload"),
		readline.PcItem("loaded"),
		readline.PcItem("resize"),
		readline.PcItem("show"),
		readline.PcItem("state"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// Run reads lines from rl until EOF, an exit command or ctx is done
func (s *Session) Run(ctx context.Context, rl *readline.Instance) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				ui.Subtle.Fprintln(s.out, "Use 'exit' or 'quit' to leave")
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if err := s.ExecuteCommand(ctx, ParseArgs(line)); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			ui.Bad.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

// ParseArgs splits a line on spaces. Double quotes group words into one
// argument.
func ParseArgs(input string) []string {
	var args []string
	var currentArg strings.Builder
	inQuotes := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ' ', '\t':
			if !inQuotes {
				if currentArg.Len() > 0 {
					args = append(args, currentArg.String())
					currentArg.Reset()
				}
			} else {
				currentArg.WriteRune(char)
			}
		default:
			currentArg.WriteRune(char)
		}
	}

	if currentArg.Len() > 0 {
		args = append(args, currentArg.String())
	}

	return args
}

// ExecuteCommand runs one parsed command line
func (s *Session) ExecuteCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command provided")
	}

	switch args[0] {
	case "click":
		id, err := nodeArg(args)
		if err != nil {
			return err
		}
		return s.do(ctx, func(c *service.Controller) error { return c.ClickNode(id) })

	case "dblclick":
		id, err := nodeArg(args)
		if err != nil {
			return err
		}
		return s.do(ctx, func(c *service.Controller) error { return c.DoubleClickNode(id) })

	case "bg":
		var cleared bool
		if err := s.do(ctx, func(c *service.Controller) error {
			cleared = c.ClickBackground()
			return nil
		}); err != nil {
			return err
		}
		if !cleared {
			ui.Subtle.Fprintln(s.out, "selection kept")
		}
		return nil

	case "zoom":
		return s.do(ctx, func(c *service.Controller) error {
			c.ZoomStart()
			return nil
		})

	case "key":
		if len(args) < 2 {
			return fmt.Errorf("usage: key <up|down|left|right|esc|ctrl+up|ctrl+down>")
		}
		return s.key(ctx, args[1])

	case "up", "down", "left", "right", "esc", "ctrl+up", "ctrl+down":
		return s.key(ctx, args[0])

	case "menu":
		id, err := nodeArg(args)
		if err != nil {
			return err
		}
		var items []menu.Item
		if err := s.do(ctx, func(c *service.Controller) error {
			var err error
			items, err = c.ContextMenu(id)
			return err
		}); err != nil {
			return err
		}
		PrintMenu(s.out, id, items)
		return nil

	case "invoke":
		return s.invoke(ctx, args[1:])

	case "names":
		on, err := toggleArg(args)
		if err != nil {
			return err
		}
		s.d.SetEventNamesVisible(on)
		return s.sync(ctx)

	case "params":
		on, err := toggleArg(args)
		if err != nil {
			return err
		}
		s.d.SetEventParamsVisible(on)
		return s.sync(ctx)

	case "prohibit":
		on, err := toggleArg(args)
		if err != nil {
			return err
		}
		s.d.SetActionsProhibited(on)
		return s.sync(ctx)

	case "select":
		id, err := nodeArg(args)
		if err != nil {
			return err
		}
		s.d.SelectRequested(id)
		return s.sync(ctx)

	case "reload":
		s.d.DataChanged()
		return s.sync(ctx)

	case "loaded":
		s.d.FileLoaded()
		return s.sync(ctx)

	case "resize":
		if len(args) < 3 {
			return fmt.Errorf("usage: resize <width> <height>")
		}
		w, errW := strconv.ParseFloat(args[1], 64)
		h, errH := strconv.ParseFloat(args[2], 64)
		if errW != nil || errH != nil || w <= 0 || h <= 0 {
			return fmt.Errorf("invalid size %s x %s", args[1], args[2])
		}
		return s.do(ctx, func(c *service.Controller) error {
			c.Resize(w, h)
			return nil
		})

	case "show":
		s.term.Print(s.out)
		return nil

	case "state":
		var state service.State
		if err := s.do(ctx, func(c *service.Controller) error {
			state = c.State()
			return nil
		}); err != nil {
			return err
		}
		PrintState(s.out, state)
		return nil

	case "help":
		s.printHelp()
		return nil

	case "exit", "quit":
		return ErrExit

	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (s *Session) key(ctx context.Context, name string) error {
	key, err := service.ParseKey(name)
	if err != nil {
		return err
	}
	return s.do(ctx, func(c *service.Controller) error {
		c.KeyDown(key)
		return nil
	})
}

// invoke runs a menu action picked by its number in the printed menu or by
// its label
func (s *Session) invoke(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: invoke <id> <number|\"label\">")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid node ID %q", args[0])
	}
	choice := strings.Join(args[1:], " ")

	return s.do(ctx, func(c *service.Controller) error {
		action, err := menu.ParseAction(choice)
		if err != nil {
			n, convErr := strconv.Atoi(choice)
			if convErr != nil {
				return err
			}
			items, menuErr := c.ContextMenu(id)
			if menuErr != nil {
				return menuErr
			}
			actions := menu.Actions(items)
			if n < 1 || n > len(actions) {
				return fmt.Errorf("%w: no item %d on the menu of %d", service.ErrActionUnavailable, n, id)
			}
			action = actions[n-1]
		}
		return c.InvokeMenu(id, action)
	})
}

// do runs fn on the controller loop
func (s *Session) do(ctx context.Context, fn func(c *service.Controller) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var opErr error
	if err := s.d.Do(ctx, func(c *service.Controller) { opErr = fn(c) }); err != nil {
		return fmt.Errorf("controller unavailable: %w", err)
	}
	return opErr
}

// sync waits until posted notifications have run
func (s *Session) sync(ctx context.Context) error {
	return s.do(ctx, func(*service.Controller) error { return nil })
}

func (s *Session) printHelp() {
	ui.Info.Fprintln(s.out, "Gestures:")
	fmt.Fprintln(s.out, "  click <id>             Select a node")
	fmt.Fprintln(s.out, "  dblclick <id>          Open the editor for a node")
	fmt.Fprintln(s.out, "  bg                     Click the empty canvas")
	fmt.Fprintln(s.out, "  zoom                   Start a pan or zoom gesture")
	fmt.Fprintln(s.out, "  key <name>             Press up, down, left, right, esc, ctrl+up or ctrl+down")
	fmt.Fprintln(s.out, "  menu <id>              Show the context menu of a node")
	fmt.Fprintln(s.out, "  invoke <id> <choice>   Run a menu item by number or \"label\"")
	fmt.Fprintln(s.out)
	ui.Info.Fprintln(s.out, "Host:")
	fmt.Fprintln(s.out, "  names on|off           Show event names")
	fmt.Fprintln(s.out, "  params on|off          Show event parameters")
	fmt.Fprintln(s.out, "  prohibit on|off        Prohibit structural actions")
	fmt.Fprintln(s.out, "  select <id>            Select and scroll to a node")
	fmt.Fprintln(s.out, "  reload                 Reload the flowchart")
	fmt.Fprintln(s.out, "  loaded                 Signal that a new file was opened")
	fmt.Fprintln(s.out, "  resize <w> <h>         Set the viewport size")
	fmt.Fprintln(s.out)
	ui.Info.Fprintln(s.out, "View:")
	fmt.Fprintln(s.out, "  show                   Print the rendered frame")
	fmt.Fprintln(s.out, "  state                  Print the controller state")
	fmt.Fprintln(s.out, "  exit                   Leave")
}

func nodeArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: %s <id>", args[0])
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid node ID %q", args[1])
	}
	return id, nil
}

func toggleArg(args []string) (bool, error) {
	if len(args) < 2 {
		return false, fmt.Errorf("usage: %s on|off", args[0])
	}
	switch strings.ToLower(args[1]) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", args[1])
}
