package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/timmy/reviewdash/internal/notifier"
	"github.com/timmy/reviewdash/internal/observer"
	"golang.org/x/sync/errgroup"
)

var errJobFinished = errors.New("job finished")

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var untilDone bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the generation job status",
		Long: `Poll the generation service and print one line per status update.

Failed polls are reported on stderr and the last known status is kept.
Stop with Ctrl-C, or pass --until-done to exit once a running job has completed.
With --until-done a completed status only ends the watch after a running status
has been seen, so a completed previous job does not end a watch started right
after "genctl start".`,
		Example: `  # Follow progress every 2 seconds
  genctl watch

  # Poll faster and exit when the job is done
  genctl watch --interval 500ms --until-done`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, untilDone)
		},
	}

	cmd.Flags().Duration("interval", observer.DefaultInterval, "Polling interval")
	cmd.Flags().Bool("discard-stale", false, "Drop poll results older than the one already shown")
	cmd.Flags().BoolVar(&untilDone, "until-done", false, "Exit once a job seen running reports completion")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, untilDone bool) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	updates := notifier.New()
	ch := updates.Subscribe()
	defer updates.Unsubscribe(ch)

	obs, err := observer.New(cc.Client, &observer.Config{
		Interval:     cc.Cfg.Poll.Interval,
		DiscardStale: cc.Cfg.Poll.DiscardStale,
		Notifier:     updates,
		OnError: func(err error) {
			_, _ = fmt.Fprintf(errOut, "poll failed: %v\n", err)
		},
	})
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		obs.Start(egctx)
		<-egctx.Done()
		obs.Stop()
		return nil
	})

	eg.Go(func() error {
		sawRunning := false
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-ch:
				status := obs.Snapshot()
				_, _ = fmt.Fprintf(out, "%s  %s\n", time.Now().Format("15:04:05"), progressLine(status))
				if status.IsRunning {
					sawRunning = true
				}
				if untilDone && sawRunning && status.Completed && !status.IsRunning {
					return errJobFinished
				}
			}
		}
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, errJobFinished) {
		return err
	}
	return nil
}
