package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"Soundlink/internal/tui"
	"Soundlink/pkg/notify"
)

func newSendCmd(a *app) *cobra.Command {
	var (
		isHex  bool
		random int
		repeat int
		gap    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Transmit one payload and exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			sent := make(chan []byte, 1)
			e, err := a.openEngine(ctx, notify.Handlers{
				OnSent: func(p []byte) { sent <- p },
			})
			if err != nil {
				return err
			}
			defer stopEngine(e)

			var payload []byte
			switch {
			case random > 0 || (len(args) == 0 && cmd.Flags().Changed("random")):
				payload = e.RandomPayload(random)
			case len(args) == 0:
				return errors.New("nothing to send: give a message or --random")
			case isHex:
				if payload, err = hex.DecodeString(args[0]); err != nil {
					return fmt.Errorf("decode hex payload: %w", err)
				}
			default:
				payload = []byte(args[0])
			}
			if !e.IsValidPayload(payload) {
				return fmt.Errorf("payload of %d bytes, limit %d", len(payload), e.MaxPayloadLength())
			}

			if err := e.Start(); err != nil {
				return err
			}
			for i := 0; i < max(repeat, 1); i++ {
				if i > 0 {
					time.Sleep(gap)
				}
				if err := e.Send(payload); err != nil {
					return err
				}
				a.logger.Info("sending", "payload", tui.Format(payload), "airtime", e.Duration(len(payload)))
				select {
				case p := <-sent:
					fmt.Fprintln(cmd.OutOrStdout(), tui.Format(p))
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&isHex, "hex", false, "message is hex encoded")
	cmd.Flags().IntVar(&random, "random", 0, "send n random bytes, 0 picks a random length")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "number of transmissions")
	cmd.Flags().DurationVar(&gap, "gap", 500*time.Millisecond, "pause between repeated transmissions")
	return cmd
}
