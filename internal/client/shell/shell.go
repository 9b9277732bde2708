package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/TripSync/internal/client/remote"
	"github.com/atinyakov/TripSync/internal/client/tripsync"
	"github.com/atinyakov/TripSync/internal/models"
	"go.uber.org/zap"
)

// Coordinator is the part of *tripsync.Coordinator the shell drives.
type Coordinator interface {
	Focus(ctx context.Context, userID string, added *tripsync.AddResult) (tripsync.View, error)
	AddTrip(ctx context.Context, userID string, in models.TripInput) (tripsync.AddResult, error)
	Sync(ctx context.Context, userID string) (tripsync.View, error)
	Delete(ctx context.Context, userID string, id int64, confirm tripsync.ConfirmFunc) (tripsync.View, error)
	View() tripsync.View
}

var _ Coordinator = (*tripsync.Coordinator)(nil)

const (
	helpText = "Available commands: help, list, add, sync, delete <id>, focus, exit"
	authHint = "Token rejected by the server. Check --token or TRIPSYNC_TOKEN."
)

// Shell runs commands against a Coordinator for one user.
type Shell struct {
	coord  Coordinator
	userID string
	prompt *Prompter
	out    io.Writer
	log    *zap.Logger

	// AssumeYes skips the delete confirmation.
	AssumeYes bool
}

// New returns a Shell reading from in and printing to out.
func New(coord Coordinator, userID string, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		coord:  coord,
		userID: userID,
		prompt: NewPrompter(in, out),
		out:    out,
		log:    log,
	}
}

// Notifier prints coordinator notices to w.
func Notifier(w io.Writer) tripsync.Notifier {
	return tripsync.NotifierFunc(func(msg string) {
		fmt.Fprintf(w, "! %s\n", msg)
	})
}

// Run shows the device list and then reads commands until "exit",
// end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	if err := s.Exec(ctx, []string{"focus"}); err != nil {
		return err
	}
	for ctx.Err() == nil {
		line, ok := s.prompt.Line("tripsync> ")
		if !ok {
			return nil
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return nil
		}
		if err := s.Exec(ctx, args); err != nil {
			s.report(err)
		}
	}
	return ctx.Err()
}

// Exec runs a single command.
func (s *Shell) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "list":
		PrintView(s.out, s.coord.View())
		return nil
	case "focus":
		v, err := s.coord.Focus(ctx, s.userID, nil)
		if err != nil {
			return err
		}
		PrintView(s.out, v)
		return nil
	case "add":
		return s.add(ctx)
	case "sync":
		v, err := s.coord.Sync(ctx, s.userID)
		if err != nil {
			// Already shown as a notice.
			s.log.Debug("sync failed", zap.Error(err))
			s.hintAuth(err)
			return nil
		}
		PrintView(s.out, v)
		return nil
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: delete <id>")
			return nil
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || id <= 0 {
			fmt.Fprintf(s.out, "Invalid id %q\n", args[1])
			return nil
		}
		return s.delete(ctx, id)
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
		return nil
	}
}

func (s *Shell) add(ctx context.Context) error {
	in, ok := s.prompt.PromptForTrip()
	if !ok {
		return nil
	}

	res, err := s.coord.AddTrip(ctx, s.userID, in)
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Errors {
			fmt.Fprintf(s.out, "  %s\n", f.Message)
		}
		return nil
	case errors.Is(err, tripsync.ErrSaveInProgress):
		fmt.Fprintln(s.out, "A save is already running")
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(s.out, "Trip %d added\n", res.Record.ID)
	s.hintAuth(res.PushErr)
	v, err := s.coord.Focus(ctx, s.userID, &res)
	if err != nil {
		return err
	}
	PrintView(s.out, v)
	return nil
}

func (s *Shell) delete(ctx context.Context, id int64) error {
	confirm := s.prompt.Confirm
	if s.AssumeYes {
		confirm = nil
	}

	v, err := s.coord.Delete(ctx, s.userID, id, confirm)
	if errors.Is(err, tripsync.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Trip %d deleted\n", id)
	PrintView(s.out, v)
	return nil
}

func (s *Shell) report(err error) {
	if errors.Is(err, tripsync.ErrNoUser) {
		fmt.Fprintln(s.out, "No user set. Pass --user or TRIPSYNC_USER.")
		return
	}
	s.log.Error("command failed", zap.Error(err))
	fmt.Fprintf(s.out, "Error: %v\n", err)
	s.hintAuth(err)
}

func (s *Shell) hintAuth(err error) {
	if errors.Is(err, remote.ErrUnauthorized) {
		fmt.Fprintln(s.out, authHint)
	}
}

// PrintView writes the list and where it came from.
func PrintView(w io.Writer, v tripsync.View) {
	fmt.Fprintf(w, "Showing %s trips\n", v.Source)
	if v.Empty() {
		fmt.Fprintln(w, "No data found")
		return
	}
	for _, r := range v.Records {
		fmt.Fprintf(w, "%d  %s | %s | with %s | by %s\n", r.ID, r.PlaceName, r.Experience, r.TravelWith, r.TravelBy)
	}
}
