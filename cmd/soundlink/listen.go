package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"Soundlink/internal/tui"
	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

func newListenCmd(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print received payloads until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			received := 0
			e, err := a.openEngine(ctx, notify.Handlers{
				OnReceived: func(p []byte) {
					if p == nil {
						a.logger.Warn("corrupted frame")
						return
					}
					fmt.Fprintln(out, tui.Format(p))
					if received++; count > 0 && received >= count {
						cancel()
					}
				},
				OnStateChanged: func(old, new state.State) {
					a.logger.Debug("state", "from", old, "to", new)
				},
				OnAuthStateChanged: func(err error) {
					if err != nil {
						a.logger.Error("license", "err", err)
					}
				},
				OnError: func(err error) {
					a.logger.Error("engine", "err", err)
					cancel()
				},
			})
			if err != nil {
				return err
			}
			defer stopEngine(e)

			if err := e.Start(); err != nil {
				return err
			}
			a.watchLicense(ctx, e)
			a.logger.Info("listening", "max payload", e.MaxPayloadLength())

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "exit after n payloads, 0 listens forever")
	return cmd
}
