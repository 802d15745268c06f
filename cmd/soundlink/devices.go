package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"Soundlink/pkg/device/portaudio"
)

func newDevicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the audio devices PortAudio can open",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := portaudio.Devices()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tHOST API\tIN\tOUT\tRATE\tDEFAULT")
			for _, d := range infos {
				def := ""
				switch {
				case d.DefaultInput && d.DefaultOutput:
					def = "in/out"
				case d.DefaultInput:
					def = "in"
				case d.DefaultOutput:
					def = "out"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f\t%s\n",
					d.Name, d.HostAPI, d.MaxInputChannels, d.MaxOutputChannels, d.SampleRate, def)
			}
			return w.Flush()
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the modulation scheme and its limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.cfg.Scheme()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.Info())
			for _, n := range []int{1, s.MaxPayloadLength()} {
				fmt.Fprintf(out, "%3d B frame: %v\n", n, s.Duration(n))
			}
			return nil
		},
	}
}
