package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"tankarena/archive"
	"tankarena/config"
	"tankarena/game"
)

var (
	historyRoom  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print archived turns of a room",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		rec, err := openBackend(cfg.Archive)
		if err != nil {
			return err
		}
		if rec == nil {
			return errors.New("archive backend is none; nothing to read")
		}
		defer rec.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		entries, err := rec.History(ctx, historyRoom, historyLimit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyRoom, "room", "room-1", "room id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of most recent turns to print")
}

func printHistory(w io.Writer, entries []archive.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no archived turns")
		return
	}
	for _, e := range entries {
		ts := e.At.Format(time.RFC3339)
		if e.Reset {
			fmt.Fprintf(w, "%s  reset (next turn %d)\n", ts, e.Turn)
			continue
		}
		fmt.Fprintf(w, "%s  turn %-4d A=%-14s B=%-14s score %d:%d",
			ts, e.Turn, e.Actions[game.RoleA].String(), e.Actions[game.RoleB].String(),
			e.Score[game.RoleA], e.Score[game.RoleB])
		if e.MoveBounce {
			fmt.Fprint(w, "  bounce")
		}
		for _, ex := range e.Explosions {
			fmt.Fprintf(w, "  %s@(%d,%d) walls=%d killed=%v", ex.By, ex.At.X, ex.At.Y, len(ex.BrokenWalls), ex.Killed)
		}
		fmt.Fprintln(w)
	}
}
