package main

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"Soundlink/internal/samples"
	"Soundlink/internal/tui"
	"Soundlink/pkg/codec"
	"Soundlink/pkg/modem"
)

func isText(path string) bool {
	return filepath.Ext(path) == ".txt"
}

func newModulateCmd(a *app) *cobra.Command {
	var (
		output string
		isHex  bool
	)
	cmd := &cobra.Command{
		Use:   "modulate <message>",
		Short: "Render a payload to a sample file",
		Long: `Render a payload to a sample file. Files ending in .txt hold one
sample per line, anything else raw little-endian int32.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := []byte(args[0])
			if isHex {
				var err error
				if payload, err = hex.DecodeString(args[0]); err != nil {
					return err
				}
			}

			s := a.cfg.Scheme()
			m, err := modem.NewModulator(s)
			if err != nil {
				return err
			}
			symbols, err := s.Codec().Encode(payload)
			if err != nil {
				return err
			}
			signal := m.Modulate(symbols)

			if isText(output) {
				err = samples.WriteText(output, signal, func(v int32) int32 { return v })
			} else {
				err = samples.WriteBinary(output, signal)
			}
			if err != nil {
				return err
			}
			a.logger.Info("modulated", "bytes", len(payload), "samples", len(signal), "airtime", s.Duration(len(payload)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "soundlink.bin", "sample file")
	cmd.Flags().BoolVar(&isHex, "hex", false, "message is hex encoded")
	return cmd
}

// printSink decodes every frame the demodulator reports.
type printSink struct {
	codec  codec.Codec
	frames []string
}

func (p *printSink) Onset() {}

func (p *printSink) Frame(symbols []codec.Symbol) {
	b, err := p.codec.Decode(symbols)
	if err != nil {
		p.frames = append(p.frames, "corrupted: "+err.Error())
		return
	}
	p.frames = append(p.frames, tui.Format(b))
}

func (p *printSink) Abort(err error) {
	p.frames = append(p.frames, "corrupted: "+err.Error())
}

func newDemodulateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demodulate <file>",
		Short: "Decode every frame in a sample file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				signal []int32
				err    error
			)
			if isText(args[0]) {
				signal, err = samples.ReadText[int32](args[0])
			} else {
				signal, err = samples.ReadBinary[int32](args[0])
			}
			if err != nil {
				return err
			}

			s := a.cfg.Scheme()
			sink := &printSink{codec: s.Codec()}
			d, err := modem.NewDemodulator(s, sink, a.logger.WithPrefix("demodulator"))
			if err != nil {
				return err
			}
			d.Write(signal)
			d.Write(make([]int32, s.PreambleLength))

			for _, f := range sink.frames {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			if len(sink.frames) == 0 {
				return fmt.Errorf("no frame found in %d samples", len(signal))
			}
			return nil
		},
	}
}
