package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/disjunct/cutplane/internal/store"
)

var runsDataDir string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted runs",
	Long:  `Display the runs stored in the trace directory with status and objectives.`,
	RunE:  listRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDataDir, "trace-dir", defaultTraceDir, "Directory holding run traces")
	rootCmd.AddCommand(runsCmd)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return err
	}
	infos, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tPROGRAM\tSTATUS\tFINISHED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			info.RunID, info.Program, info.Status, info.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
