package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"plantify/internal/container"
	"plantify/internal/infrastructure/dropfolder"
	"plantify/internal/infrastructure/imagefile"
)

func watchCmd() *cobra.Command {
	var (
		asJSON  bool
		pattern string
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Identify every image dropped into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watcher, err := dropfolder.New(args[0], pattern)
			if err != nil {
				return err
			}

			_, c, err := bootstrap(cmd.Context(), container.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			out := newConsole(cmd.OutOrStdout(), cmd.ErrOrStderr(), asJSON)
			out.follow = true
			c.IdentificationService.SetPresenter(out)

			return watcher.Run(cmd.Context(), func(path string) {
				file, err := imagefile.FromPath(path)
				if err != nil {
					log.Warn().Err(err).Str("path", path).Msg("skip file")
					return
				}
				if _, err := c.IdentificationService.IdentifyFile(cmd.Context(), cliChatID, file); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("identification not started")
				}
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print plant records as JSON")
	cmd.Flags().StringVar(&pattern, "pattern", dropfolder.DefaultPattern, "Glob for accepted file names")
	return cmd
}
