package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gamefilm/services"
	"gamefilm/timeline"
)

func NewPlayCmd(deps *Dependencies) *cobra.Command {
	var (
		lane      int
		from      int64
		forMs     int64
		step      int64
		rate      float64
		gapPolicy string
		viewer    string
	)

	cmd := &cobra.Command{
		Use:   "play <gameId>",
		Short: "Simulate playback over a stored timeline",
		Long:  "Advance a playhead over one lane in fixed steps and print which footage would play, including how gaps are handled.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if step <= 0 {
				return fmt.Errorf("--step must be positive")
			}
			policy := deps.Config.Policy()
			if gapPolicy != "" {
				p, err := timeline.ParseGapPolicy(gapPolicy)
				if err != nil {
					return err
				}
				policy = p
			}

			db, err := deps.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			ed := deps.newEditor(db, services.NewLibraryService(deps.Config.FootagePath, db, nil))
			tl, err := ed.Snapshot(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			player := timeline.NewPlayer(tl, policy)
			if err := player.SetRate(rate); err != nil {
				return err
			}
			if lane > 0 {
				player.SetActiveLane(lane)
			}
			player.Seek(from)

			if viewer != "" {
				saved, _, err := ed.Resume(ctx, args[0], viewer, "", 0)
				if err != nil {
					return err
				}
				if f, ok := player.Resume(saved); ok {
					fmt.Fprintf(out, "Resuming %s at %s on lane %d\n", viewer, timeline.ClockLabel(f.PositionMs), player.State.ActiveLane)
				}
			}

			player.Play()
			fmt.Fprintf(out, "%s  %s\n", timeline.ClockLabel(player.State.PlayheadPositionMs), describeActive(player.Seek(player.State.PlayheadPositionMs).Active))
			for elapsed := int64(0); elapsed < forMs; elapsed += step {
				f := player.Advance(step)
				line := fmt.Sprintf("%s  %s", timeline.ClockLabel(f.PositionMs), describeActive(f.Active))
				if f.Skipped {
					line += "  [skipped gap]"
				}
				fmt.Fprintln(out, line)
				if player.Status() != timeline.Playing {
					fmt.Fprintf(out, "%s at %s\n", f.Status, timeline.ClockLabel(f.PositionMs))
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lane, "lane", "l", 0, "Lane to watch (default: first lane)")
	cmd.Flags().Int64Var(&from, "from", 0, "Start position (ms)")
	cmd.Flags().Int64Var(&forMs, "for", 60000, "How long to play (ms of wall time)")
	cmd.Flags().Int64Var(&step, "step", 1000, "Tick length (ms)")
	cmd.Flags().Float64Var(&rate, "rate", 1, "Playback rate")
	cmd.Flags().StringVar(&gapPolicy, "gap-policy", "", "skip or pause (default from config)")
	cmd.Flags().StringVar(&viewer, "viewer", "", "Start from this viewer's saved resume position")
	return cmd
}
