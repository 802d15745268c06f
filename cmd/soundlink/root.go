package main

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"Soundlink/internal/config"
	"Soundlink/pkg/engine"
)

// app is the state shared by every command once the root pre-run loaded
// the configuration.
type app struct {
	cfgPath string
	cfg     *config.Config
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "soundlink",
		Short: "Send short messages between devices over sound",
		Long: `Soundlink moves short payloads between nearby devices through the
speaker and microphone: 16-FSK tones behind a chirp preamble, one frame of
up to a few dozen bytes at a time, gated by a signed license.`,
		Example: `  soundlink chat --app-key demo --app-secret s3cret
  soundlink send "hello" --device loopback
  soundlink license issue --app demo --max-payload 16`,
		Version:       fmt.Sprintf("%s %s/%s", engine.Version, runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			logger.Debug("configuration", "file", path, "device", cfg.Device.Backend, "scheme", cfg.Scheme().Info())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file, YAML or TOML (default ~/.soundlink/config.yaml)")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newChatCmd(a),
		newSendCmd(a),
		newListenCmd(a),
		newLicenseCmd(a),
		newModulateCmd(a),
		newDemodulateCmd(a),
		newRecordCmd(a),
		newDevicesCmd(a),
		newInfoCmd(a),
	)
	return root
}
