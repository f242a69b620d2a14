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

func newWalkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk [path|user@host [remote-path]]",
		Short: "Print a table of contents for every directory",
		Long: `Groups the children of each directory into subdirectories, files,
symlinks and other nodes. The root is shown as ".".`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWalk(cmd, args)
		},
	}
	a.addScanFlags(cmd)
	return cmd
}

func (a *app) runWalk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fsys, root, closer, err := a.openTarget(ctx, args)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := a.options(scanner.ShapeToc)
	if err != nil {
		return err
	}
	wk, err := scanner.NewWalkerFS(fsys, root, opts)
	if err != nil {
		return err
	}
	seq, err := wk.Iter(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	quiet := a.scan.export == "-"
	tocs := []model.DirToc{}
	var total model.Toc
	for t := range seq {
		tocs = append(tocs, t)
		total.Merge(t.Toc)
		if !quiet {
			printToc(out, t)
		}
	}
	interrupted := ctx.Err() != nil

	if a.scan.export != "" {
		rep := &ops.Report{
			Root:     wk.Root(),
			Shape:    opts.Shape.String(),
			Metadata: opts.Metadata.String(),
			Toc:      tocs,
			Errors:   wk.Errors(true),
		}
		if err := a.export(cmd, rep); err != nil {
			return err
		}
	}
	if quiet {
		return nil
	}

	printSummary(out,
		fmt.Sprintf("%d directories listed", len(tocs)),
		fmt.Sprintf("%d names", total.Len()),
		fmt.Sprintf("%d errors", len(total.Errors)),
		util.FormatDuration(wk.Duration()))
	if interrupted {
		printInterrupted(out)
	}
	return nil
}
