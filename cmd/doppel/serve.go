package main

import (
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/doppel/config"
	srv "github.com/mohammad-safakhou/doppel/internal/server"
)

func serveCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg := config.LoadConfig(cfgPath)
			return srv.Run(cfg)
		},
	}
}
