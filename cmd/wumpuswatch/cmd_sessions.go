package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wumpuswatch/internal/store"
)

// sessionsCmd lists recorded observation sessions
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded observation sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.Recorder.Path); os.IsNotExist(err) {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		sessions, err := store.ListSessions(cfg.Recorder.Path)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tSTARTED\tSNAPSHOTS\tACTIONS\tFINISHED\tSERVER")
		for _, s := range sessions {
			finished := ""
			if s.Finished {
				finished = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
				s.ID,
				s.StartedAt.Local().Format("2006-01-02 15:04:05"),
				s.Snapshots,
				s.Actions,
				finished,
				s.ServerURL)
		}
		return w.Flush()
	},
}
