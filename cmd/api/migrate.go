package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/config"
)

func newMigrateCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply catalog schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateCatalog(cfg, log)
		},
	}
}
