package main

import (
	"github.com/spf13/cobra"

	"plantify/internal/container"
	"plantify/internal/infrastructure/imagefile"
)

func identifyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify a plant from an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := imagefile.FromPath(args[0])
			if err != nil {
				return err
			}

			_, c, err := bootstrap(cmd.Context(), container.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			out := newConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), asJSON)
			c.IdentificationService.SetPresenter(out)

			run, err := c.IdentificationService.IdentifyFile(cmd.Context(), cliChatID, file)
			return out.Finish(cmd.Context(), c.IdentificationService, run, err)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plant record as JSON")
	return cmd
}
