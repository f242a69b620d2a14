package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sadopc/gscandir/internal/ops"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/sadopc/gscandir/internal/ui"
	"github.com/spf13/cobra"
)

func newCountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [path|user@host [remote-path]]",
		Short: "Count directories, files and links below a root",
		Long: `Counts every entry below the root by type. With --metadata ext the
apparent size and disk usage are summed as well and hard links are counted.
On a terminal a live progress view is shown while counting; press q to stop.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCount(cmd, args)
		},
	}
	a.addScanFlags(cmd)
	cmd.Flags().BoolVar(&a.scan.noProgress, "no-progress", false, "Never show the live progress view")
	return cmd
}

func (a *app) runCount(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fsys, root, closer, err := a.openTarget(ctx, args)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := a.options(scanner.ShapeStats)
	if err != nil {
		return err
	}
	c, err := scanner.NewCountFS(fsys, root, opts)
	if err != nil {
		return err
	}

	if err := c.Start(); err != nil {
		return err
	}
	var interrupted bool
	if a.showProgress() {
		interrupted, err = ui.Run(c.Root(), c, a.stdin, cmd.ErrOrStderr())
		if err != nil {
			_ = c.Stop()
			return err
		}
		if err := c.Join(); err != nil && !errors.Is(err, scanner.ErrNotRunning) {
			return err
		}
	} else {
		interrupted = waitOrStop(ctx, c)
	}

	stats := c.Statistics()
	a.log.WithField("scan_id", c.ID()).Debugf("count finished: %s", stats)

	if a.scan.export != "" {
		rep := &ops.Report{
			Root:     c.Root(),
			Shape:    opts.Shape.String(),
			Metadata: opts.Metadata.String(),
			Stats:    &stats,
		}
		if err := a.export(cmd, rep); err != nil {
			return err
		}
		if a.scan.export == "-" {
			return nil
		}
	}

	out := cmd.OutOrStdout()
	printStats(out, c.Root(), stats, c.Duration())
	if interrupted {
		printInterrupted(out)
	}
	return nil
}

// options builds the scan options for shape from the merged configuration.
func (a *app) options(shape scanner.Shape) (scanner.Options, error) {
	opts, err := a.cfg.ToOptions(shape)
	if err != nil {
		return scanner.Options{}, err
	}
	opts.Logger = a.log
	return opts, nil
}

func (a *app) showProgress() bool {
	return !a.scan.noProgress && a.scan.export != "-" && a.interactive()
}

// waitOrStop waits for a started scan to finish, stopping it early if ctx is
// cancelled. It reports whether the scan was interrupted.
func waitOrStop(ctx context.Context, ctrl scanner.Controller) bool {
	joined := make(chan struct{})
	go func() {
		_ = ctrl.Join()
		close(joined)
	}()

	select {
	case <-joined:
		return false
	case <-ctx.Done():
		_ = ctrl.Stop()
		<-joined
		return true
	}
}

func (a *app) export(cmd *cobra.Command, rep *ops.Report) error {
	if err := ops.ExportJSON(rep, a.scan.export, a.version); err != nil {
		return fmt.Errorf("export error: %w", err)
	}
	if a.scan.export != "-" {
		printSummary(cmd.ErrOrStderr(), fmt.Sprintf("exported to %s", a.scan.export))
	}
	return nil
}
