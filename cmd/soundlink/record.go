package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"Soundlink/internal/callbacks"
	"Soundlink/internal/samples"
)

func newRecordCmd(a *app) *cobra.Command {
	var (
		output   string
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture the input device to a sample file for demodulate",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			dev, err := a.cfg.Device()
			if err != nil {
				return err
			}
			var rec callbacks.Recorder
			if err := dev.Start(func(in, out []int32) {
				rec.Update(in)
				clear(out)
			}); err != nil {
				return err
			}

			select {
			case <-time.After(duration):
			case <-ctx.Done():
			}
			if err := dev.Stop(); err != nil {
				a.logger.Warn("device stop", "err", err)
			}

			track := rec.Track()
			if isText(output) {
				err = samples.WriteText(output, track, func(v int32) int32 { return v })
			} else {
				err = samples.WriteBinary(output, track)
			}
			if err != nil {
				return err
			}
			a.logger.Info("recorded", "samples", len(track), "file", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "recording.bin", "sample file")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "how long to record")
	return cmd
}
