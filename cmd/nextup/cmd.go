package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/term"

	"github.com/daap14/nextup/internal/client"
	"github.com/daap14/nextup/internal/timer"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// API is the part of the HTTP client the commands use.
type API interface {
	Register(ctx context.Context, email, password string) (*client.User, error)
	Login(ctx context.Context, email, password string) (*client.User, error)
	Token() string
	CreateTeam(ctx context.Context, name, topic string, members []string) (*client.Team, error)
	Teams(ctx context.Context) ([]client.Team, error)
	Status(ctx context.Context) (*client.Status, error)
	Randomize(ctx context.Context) (*client.Draw, error)
	ResetRound(ctx context.Context) (int, error)
	SaveNotes(ctx context.Context, teamID, notes string) (*client.Team, error)
	Export(ctx context.Context, format string) ([]byte, error)
	timer.Recorder
}

type commandLine struct {
	api       API
	in        io.Reader
	out       io.Writer
	tokenPath string
	clock     clockwork.Clock // nil means the real clock
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  register -email EMAIL                          - create an account (password prompted)")
	fmt.Fprintln(cli.out, "  login -email EMAIL                             - log in (password prompted)")
	fmt.Fprintln(cli.out, "  teams                                          - list teams")
	fmt.Fprintln(cli.out, "  add-team -name NAME [-topic T] [-members a,b]  - add a team")
	fmt.Fprintln(cli.out, "  status                                         - remaining count and last drawn team")
	fmt.Fprintln(cli.out, "  draw                                           - draw the next team")
	fmt.Fprintln(cli.out, "  reset-round                                    - put every team back into the round")
	fmt.Fprintln(cli.out, "  notes -team ID [-text TEXT]                    - set the notes of a team, empty text clears them")
	fmt.Fprintln(cli.out, "  present [-draw] [-presentation 7] [-qa 3]      - run the timer for the last drawn team")
	fmt.Fprintln(cli.out, "  export [-format csv|json] [-out FILE]          - download the summary")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "register", "login":
		fs := flag.NewFlagSet(args[1], flag.ContinueOnError)
		fs.SetOutput(cli.out)
		email := fs.String("email", "", "The account email. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			fs.Usage()
			return errHelp
		}
		return cli.authenticate(ctx, args[1], *email, string(pwd))

	case "teams":
		return cli.listTeams(ctx)

	case "add-team":
		fs := flag.NewFlagSet("add-team", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		name := fs.String("name", "", "Team name")
		topic := fs.String("topic", "", "Presentation topic (default TBD)")
		members := fs.String("members", "", "Comma separated member names")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *name == "" {
			fs.Usage()
			return errHelp
		}
		return cli.addTeam(ctx, *name, *topic, splitMembers(*members))

	case "status":
		return cli.status(ctx)

	case "draw":
		_, err := cli.draw(ctx)
		return err

	case "reset-round":
		remaining, err := cli.api.ResetRound(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Round reset, %d teams remaining\n", remaining)
		return nil

	case "notes":
		fs := flag.NewFlagSet("notes", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		teamID := fs.String("team", "", "Team id, as printed by teams")
		text := fs.String("text", "", "Notes text")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *teamID == "" {
			fs.Usage()
			return errHelp
		}
		return cli.saveNotes(ctx, *teamID, *text)

	case "present":
		fs := flag.NewFlagSet("present", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		drawFirst := fs.Bool("draw", false, "Draw the next team before starting")
		presMin := fs.Int("presentation", 7, "Presentation minutes")
		qaMin := fs.Int("qa", 3, "Q&A minutes")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.present(ctx, *drawFirst, *presMin, *qaMin)

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		format := fs.String("format", "csv", "csv or json")
		out := fs.String("out", "", "Output file (default teams-export-<millis>.<format>)")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.export(ctx, *format, *out)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) authenticate(ctx context.Context, action, email, password string) error {
	var (
		user *client.User
		err  error
	)
	if action == "register" {
		user, err = cli.api.Register(ctx, email, password)
	} else {
		user, err = cli.api.Login(ctx, email, password)
	}
	if err != nil {
		return err
	}

	if cli.tokenPath != "" {
		if err := writeToken(cli.tokenPath, cli.api.Token()); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "Logged in as %s\n", user.Email)
	return nil
}

func (cli *commandLine) listTeams(ctx context.Context) error {
	teams, err := cli.api.Teams(ctx)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		fmt.Fprintln(cli.out, "No teams yet")
		return nil
	}
	for _, t := range teams {
		fmt.Fprintf(cli.out, "%s  %s (%s)", t.ID, t.Name, t.Topic)
		if len(t.Members) > 0 {
			fmt.Fprintf(cli.out, " - %s", strings.Join(t.Members, ", "))
		}
		if n := len(t.Presentations); n > 0 {
			fmt.Fprintf(cli.out, " [presented %dx]", n)
		}
		fmt.Fprintln(cli.out)
	}
	return nil
}

func (cli *commandLine) addTeam(ctx context.Context, name, topic string, members []string) error {
	t, err := cli.api.CreateTeam(ctx, name, topic, members)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Added %s (%s)\n", t.Name, t.ID)
	return nil
}

func (cli *commandLine) status(ctx context.Context) error {
	st, err := cli.api.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d teams remaining\n", st.RemainingCount)
	if st.LastSelected != nil {
		fmt.Fprintf(cli.out, "Last drawn: %s (%s)\n", st.LastSelected.Name, st.LastSelected.Topic)
	}
	return nil
}

func (cli *commandLine) draw(ctx context.Context) (*client.Team, error) {
	d, err := cli.api.Randomize(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(cli.out, "Next up: %s (%s), %d remaining\n", d.Team.Name, d.Team.Topic, d.RemainingCount)
	return &d.Team, nil
}

func (cli *commandLine) saveNotes(ctx context.Context, teamID, text string) error {
	t, err := cli.api.SaveNotes(ctx, teamID, text)
	if err != nil {
		return err
	}
	if t.Notes == nil {
		fmt.Fprintf(cli.out, "Cleared notes of %s\n", t.Name)
		return nil
	}
	fmt.Fprintf(cli.out, "Saved notes of %s\n", t.Name)
	return nil
}

func (cli *commandLine) export(ctx context.Context, format, out string) error {
	body, err := cli.api.Export(ctx, format)
	if err != nil {
		return err
	}
	if out == "" {
		out = fmt.Sprintf("teams-export-%d.%s", time.Now().UnixMilli(), format)
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(cli.out, "Wrote %s\n", out)
	return nil
}

func splitMembers(s string) []string {
	var members []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}
