package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/sadopc/gscandir/internal/model"
	"github.com/sadopc/gscandir/internal/ops"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/sadopc/gscandir/internal/util"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [path|user@host [remote-path]]",
		Short: "List every entry below a root",
		Long: `Prints one line per entry as the scan produces it. Paths are relative
to the root. Entries that could not be read are reported inline and do not
stop the scan.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, args)
		},
	}
	a.addScanFlags(cmd)
	return cmd
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fsys, root, closer, err := a.openTarget(ctx, args)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := a.options(scanner.ShapeEntries)
	if err != nil {
		return err
	}
	s, err := scanner.NewScandirFS(fsys, root, opts)
	if err != nil {
		return err
	}
	seq, err := s.Iter(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	quiet := a.scan.export == "-"
	entries := []model.Result{}
	errs := []model.ErrorEntry{}
	types := model.CategoryCounts{}
	for r := range seq {
		switch e := r.(type) {
		case model.ErrorEntry:
			errs = append(errs, e)
		case model.ExtEntry:
			entries = append(entries, r)
			countFile(types, e.Entry)
		case model.Entry:
			entries = append(entries, r)
			countFile(types, e)
		}
		if !quiet {
			printResult(out, r)
		}
	}
	interrupted := ctx.Err() != nil

	if a.scan.export != "" {
		rep := &ops.Report{
			Root:     s.Root(),
			Shape:    opts.Shape.String(),
			Metadata: opts.Metadata.String(),
			Entries:  entries,
			Errors:   errs,
		}
		if err := a.export(cmd, rep); err != nil {
			return err
		}
	}
	if quiet {
		return nil
	}

	printSummary(out,
		fmt.Sprintf("%d entries", len(entries)),
		fmt.Sprintf("%d errors", len(errs)),
		util.FormatDuration(s.Duration()))
	printCategories(out, types)
	if interrupted {
		printInterrupted(out)
	}
	return nil
}

func countFile(c model.CategoryCounts, e model.Entry) {
	if e.IsFile {
		c.Add(e.Path)
	}
}
