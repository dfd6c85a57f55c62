package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/tavla/internal/app"
	"github.com/florianilch/tavla/internal/departures"
)

func printCommand() *cli.Command {
	return &cli.Command{
		Name:  "print",
		Usage: "fetch departures once and print them",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of text",
			},
		},
		Action: printAction,
	}
}

func printAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer flush(shutdown)

	board, _, err := app.NewBoard(cfg)
	if err != nil {
		return err
	}

	deps, err := board.Departures(ctx)
	if err != nil {
		return fmt.Errorf("fetching departures: %w", err)
	}

	out := writer(cmd)
	if cmd.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(deps)
	}

	_, err = io.WriteString(out, formatDepartures(cfg.Board.Title, deps, isTerminal(out)))
	return err
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 0, 1, 0)
	pillStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15"))
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	plannedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cancelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// formatDepartures renders one line per departure. Styling is only applied
// when the output is a terminal.
func formatDepartures(title string, deps []departures.Departure, styled bool) string {
	var b strings.Builder

	if styled {
		b.WriteString(titleStyle.Render(title))
	} else {
		b.WriteString(title)
	}
	b.WriteString("\n")

	if len(deps) == 0 {
		b.WriteString("Inga avgångar den närmaste timmen\n")
		return b.String()
	}

	for _, d := range deps {
		b.WriteString(formatDeparture(d, styled))
		b.WriteString("\n")
	}
	return b.String()
}

func formatDeparture(d departures.Departure, styled bool) string {
	line, clock, planned, cancelled := d.Line, d.Time, "(plan "+d.Planned+")", "INSTÄLLD"

	if styled {
		pill := pillStyle
		if d.BackgroundColor != nil {
			pill = pill.Background(lipgloss.Color(*d.BackgroundColor))
		}
		if d.ForegroundColor != nil {
			pill = pill.Foreground(lipgloss.Color(*d.ForegroundColor))
		}
		line = pill.Render(line)
		clock = timeStyle.Render(clock)
		planned = plannedStyle.Render(planned)
		cancelled = cancelStyle.Render(cancelled)
	}

	s := fmt.Sprintf("Linje %s mot %s – Läge %s – %s", line, d.Direction, d.Platform, clock)
	if d.Delayed() {
		s += " " + planned
	}
	if d.IsCancelled {
		s += " – " + cancelled
	}
	return s
}
