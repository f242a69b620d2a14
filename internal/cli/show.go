package cli

import (
	"fmt"

	"github.com/sadopc/gscandir/internal/ops"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show FILE",
		Short: "Print a scan exported with --export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := ops.ImportJSON(args[0])
			if err != nil {
				return err
			}
			a.log.WithField("file", args[0]).Debugf("imported %s report of %s", rep.Shape, rep.Root)
			printReport(cmd, rep)
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, rep *ops.Report) {
	out := cmd.OutOrStdout()
	switch {
	case rep.Stats != nil:
		printStats(out, rep.Root, *rep.Stats, 0)
	case rep.Toc != nil:
		headerColor.Fprintf(out, "%s\n", rep.Root)
		for _, t := range rep.Toc {
			printToc(out, t)
		}
		printSummary(out, fmt.Sprintf("%d directories listed", len(rep.Toc)))
	default:
		headerColor.Fprintf(out, "%s\n", rep.Root)
		for _, r := range rep.Entries {
			printResult(out, r)
		}
		for _, e := range rep.Errors {
			printResult(out, e)
		}
		printSummary(out,
			fmt.Sprintf("%d entries", len(rep.Entries)),
			fmt.Sprintf("%d errors", len(rep.Errors)))
	}
}
