package main

import (
	"github.com/spf13/cobra"

	"plantify/internal/container"
)

func captureCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Take a picture with the camera and identify the plant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := bootstrap(cmd.Context(), container.Options{ForceCamera: true})
			if err != nil {
				return err
			}
			defer c.Close()

			out := newConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), asJSON)
			c.IdentificationService.SetPresenter(out)

			run, err := c.IdentificationService.IdentifyCamera(cmd.Context(), cliChatID)
			return out.Finish(cmd.Context(), c.IdentificationService, run, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plant record as JSON")
	return cmd
}
