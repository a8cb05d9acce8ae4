package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gamefilm/services"
	"gamefilm/timeline"
)

func NewInspectCmd(deps *Dependencies) *cobra.Command {
	var (
		at     int64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <gameId>",
		Short: "Print a stored timeline",
		Long:  "Print the lanes and clips of a game's timeline. With --at, also show what plays on every lane at that time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := deps.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ed := deps.newEditor(db, services.NewLibraryService(deps.Config.FootagePath, db, nil))
			view, err := ed.Timeline(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var active []timeline.ActiveClipInfo
			if at >= 0 {
				if active, err = ed.ResolveAll(cmd.Context(), args[0], at); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					services.TimelineView
					Active []timeline.ActiveClipInfo `json:"active,omitempty"`
				}{view, active})
			}
			printTimeline(out, view)
			if at >= 0 {
				printActive(out, at, active)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&at, "at", -1, "Resolve every lane at this game time (ms)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func printTimeline(out io.Writer, view services.TimelineView) {
	mode := "off"
	if view.TimelineModeEnabled {
		mode = "on"
	}
	fmt.Fprintf(out, "Game %s  revision %d  duration %s  multi-camera %s\n",
		view.GameID, view.Revision, timeline.ClockLabel(view.TotalDurationMs), mode)
	if view.UnsavedChanges {
		fmt.Fprintln(out, "  (unsaved changes)")
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, l := range view.Lanes {
		fmt.Fprintf(w, "Lane %d\t%s\toffset %dms\t%d clips\n", l.Lane, l.Label, l.SyncOffsetMs, len(l.Clips))
		for _, c := range l.Clips {
			end := "end"
			if c.EndOffsetMs != nil {
				end = fmt.Sprintf("%d", *c.EndOffsetMs)
			}
			fmt.Fprintf(w, "  %s\t%s\t%s-%s\tsource %d-%s\n",
				c.ID, c.VideoID,
				timeline.ClockLabel(c.LanePositionMs), timeline.ClockLabel(c.LanePositionMs+c.DurationMs),
				c.StartOffsetMs, end)
		}
	}
	w.Flush()
}

func printActive(out io.Writer, at int64, infos []timeline.ActiveClipInfo) {
	fmt.Fprintf(out, "At %s:\n", timeline.ClockLabel(at))
	for _, info := range infos {
		fmt.Fprintf(out, "  %s\n", describeActive(info))
	}
}

func describeActive(info timeline.ActiveClipInfo) string {
	if !info.IsInGap && info.Clip != nil {
		return fmt.Sprintf("lane %d: %s (%s) at %dms into clip, source %dms",
			info.Lane, info.Clip.ID, info.Clip.VideoID, info.ClipTimeMs, info.SourceTimeMs)
	}
	if info.NextClipStartMs != nil {
		return fmt.Sprintf("lane %d: gap, next clip at %s", info.Lane, timeline.ClockLabel(*info.NextClipStartMs))
	}
	return fmt.Sprintf("lane %d: gap, no more footage", info.Lane)
}
