package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/daap14/nextup/internal/client"
	"github.com/daap14/nextup/internal/timer"
)

const presentHelp = "commands: s start/resume, p pause, q Q&A, f finish, r reset, n TEXT notes, x exit"

// present runs the countdown for the drawn team and reads single letter
// commands from the input until x or end of input.
func (cli *commandLine) present(ctx context.Context, drawFirst bool, presMin, qaMin int) error {
	var current *client.Team
	if drawFirst {
		t, err := cli.draw(ctx)
		if err != nil {
			return err
		}
		current = t
	} else {
		st, err := cli.api.Status(ctx)
		if err != nil {
			return err
		}
		if st.LastSelected == nil {
			return errors.New("no team drawn yet, run draw or present -draw")
		}
		current = st.LastSelected
	}

	cfg := timer.DefaultConfig()
	cfg.PresentationMinutes = presMin
	cfg.QAMinutes = qaMin
	if cli.clock != nil {
		cfg.Clock = cli.clock
	}
	tm := timer.New(cfg, cli.api)
	tm.SetTeam(parseTeamID(current.ID))

	var mu sync.Mutex
	printf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(cli.out, format, args...)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = tm.Run(runCtx, func(s timer.Snapshot) {
			printf("%s\n", describe(s))
		})
	}()

	printf("Presenting %s\n%s\n", current.Name, presentHelp)

	scanner := bufio.NewScanner(cli.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "n" || strings.HasPrefix(line, "n ") {
			text := strings.TrimSpace(strings.TrimPrefix(line, "n"))
			if _, err := cli.api.SaveNotes(ctx, current.ID, text); err != nil {
				printf("saving notes failed: %v\n", err)
				continue
			}
			printf("notes saved\n")
			continue
		}

		cmd := strings.ToLower(line)
		var err error
		switch cmd {
		case "":
			continue
		case "s":
			tm.Start()
		case "p":
			tm.Pause()
		case "q":
			err = tm.AdvanceToQA(ctx)
		case "f":
			err = tm.Finish(ctx)
		case "r":
			err = tm.Reset(ctx)
		case "x":
			cancel()
			<-done
			return nil
		default:
			printf("%s\n", presentHelp)
			continue
		}
		if err != nil {
			if !errors.Is(err, timer.ErrInvalidTransition) {
				cancel()
				<-done
				return err
			}
			printf("not allowed in this phase\n")
		}
		printf("%s\n", describe(tm.Snapshot()))
	}

	cancel()
	<-done
	return scanner.Err()
}

func describe(s timer.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", s.Phase, timer.FormatClock(s.RemainingSeconds))
	if !s.Running && (s.Phase == timer.PhasePresentation || s.Phase == timer.PhaseQA) {
		b.WriteString(" (paused)")
	}
	if s.Warning {
		b.WriteString(" !")
	}
	if s.Phase == timer.PhaseComplete {
		fmt.Fprintf(&b, " presentation %s, Q&A %s",
			timer.FormatClock(s.PresentationSeconds), timer.FormatClock(s.QASeconds))
	}
	return b.String()
}

func parseTeamID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
