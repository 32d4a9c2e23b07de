package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/config"
)

func newRootCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	serve := newServeCmd(cfg, log)

	cmd := &cobra.Command{
		Use:           "filevault",
		Short:         "FileVault stores uploaded files and serves them back by name",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.AddCommand(
		serve,
		newMigrateCmd(cfg, log),
	)

	return cmd
}
