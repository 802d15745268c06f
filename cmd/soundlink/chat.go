package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"Soundlink/internal/tui"
	"Soundlink/pkg/notify"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := a.openEngine(ctx, notify.Handlers{})
			if err != nil {
				return err
			}
			defer stopEngine(e)

			title := fmt.Sprintf(" Soundlink %s · %s ", e.Version(), a.cfg.App.Key)
			p := tea.NewProgram(tui.New(e, title), tea.WithAltScreen(), tea.WithContext(ctx))
			e.SetHandlers(tui.Handlers(p.Send))

			if err := e.Start(); err != nil {
				return err
			}
			a.watchLicense(ctx, e)

			_, err = p.Run()
			return err
		},
	}
}
