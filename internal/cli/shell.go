package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"libranet/internal/catalog"
	"libranet/internal/circulation"
	"libranet/internal/cli/scheme/colours"
)

const prompt = "libranet> "

// Shell is a line-oriented console over a circulation service.
type Shell struct {
	svc circulation.Service
	in  io.Reader
	out io.Writer
	p   *Presenter
	log logrus.FieldLogger
}

func NewShell(svc circulation.Service, in io.Reader, out io.Writer, log logrus.FieldLogger) *Shell {
	return &Shell{
		svc: svc,
		in:  in,
		out: out,
		p:   NewPresenter(out),
		log: log.WithField("component", "shell"),
	}
}

// Run reads commands until quit, end of input or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	colours.Heading.Fprintln(s.out, "LibraNet shell. Type 'help' for commands.")

	scanner := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		colours.Prompt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := strings.ToLower(fields[0]), fields[1:]
		if cmd == "quit" || cmd == "exit" {
			s.p.Warn("Goodbye!")
			return nil
		}

		if err := s.exec(ctx, cmd, args); err != nil {
			s.log.WithError(err).WithField("command", cmd).Debug("command failed")
			s.p.Error(err)
		}
	}
}

func (s *Shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.help()
		return nil

	case "list":
		items, err := s.svc.ListItems(ctx)
		if err != nil {
			return err
		}
		s.p.Items(items)
		return nil

	case "find":
		if len(args) != 1 {
			return usage("find <book|audiobook|emagazine>")
		}
		t, err := catalog.ParseItemType(args[0])
		if err != nil {
			return err
		}
		items, err := s.svc.FindByType(ctx, t)
		if err != nil {
			return err
		}
		s.p.Items(items)
		return nil

	case "show":
		id, err := idArg(args, "show <id>")
		if err != nil {
			return err
		}
		d, err := s.svc.GetItem(ctx, id)
		if err != nil {
			return err
		}
		s.p.Item(d)
		return nil

	case "borrow":
		if len(args) < 2 {
			return usage("borrow <id> <duration>")
		}
		id, err := idArg(args[:1], "borrow <id> <duration>")
		if err != nil {
			return err
		}
		res, err := s.svc.BorrowItem(ctx, id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		s.p.Result(res)
		return nil

	case "return":
		if len(args) < 1 || len(args) > 2 {
			return usage("return <id> [late-days]")
		}
		id, err := idArg(args[:1], "return <id> [late-days]")
		if err != nil {
			return err
		}
		lateDays := 0
		if len(args) == 2 {
			if lateDays, err = strconv.Atoi(args[1]); err != nil {
				return usage("return <id> [late-days]")
			}
		}
		res, err := s.svc.ReturnItem(ctx, id, lateDays)
		if err != nil {
			return err
		}
		s.p.Result(res)
		return nil

	case "play":
		id, err := idArg(args, "play <id>")
		if err != nil {
			return err
		}
		ev, err := s.svc.Play(ctx, id)
		if err != nil {
			return err
		}
		s.p.Playback(ev)
		return nil

	case "archive":
		id, err := idArg(args, "archive <id>")
		if err != nil {
			return err
		}
		ev, err := s.svc.Archive(ctx, id)
		if err != nil {
			return err
		}
		s.p.Archive(ev)
		return nil

	case "fines":
		fines, err := s.svc.Fines(ctx)
		if err != nil {
			return err
		}
		s.p.Fines(fines)
		return nil

	case "history":
		id, err := idArg(args, "history <id>")
		if err != nil {
			return err
		}
		events, err := s.svc.History(ctx, id)
		if err != nil {
			return err
		}
		s.p.History(events)
		return nil

	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func (s *Shell) help() {
	colours.Info.Fprintln(s.out, "Commands:")
	for _, line := range []string{
		"  list                       - list every item",
		"  find <type>                - list items of one type (book, audiobook, emagazine)",
		"  show <id>                  - show one item",
		"  borrow <id> <duration>     - borrow an item, e.g. 'borrow 1 5 days'",
		"  return <id> [late-days]    - return an item",
		"  play <id>                  - play an audiobook",
		"  archive <id>               - archive a magazine issue",
		"  fines                      - show the fine ledger",
		"  history <id>               - show an item's circulation history",
		"  quit                       - leave the shell",
	} {
		fmt.Fprintln(s.out, line)
	}
}

func idArg(args []string, use string) (int, error) {
	if len(args) != 1 {
		return 0, usage(use)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", args[0])
	}
	return id, nil
}

func usage(use string) error {
	return fmt.Errorf("usage: %s", use)
}
