package main

import (
	"github.com/spf13/cobra"
)

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <destination>",
		Short: "Copy the ledger database to a destination path",
		Long: `Copy the live ledger file verbatim to the given destination, creating
parent directories as needed. Run this while no writes are in progress;
a copy taken mid-write can be torn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			dst := expandPath(args[0])
			if err := store.Backup(cmd.Context(), dst); err != nil {
				return err
			}
			cmd.Printf("Backed up ledger to %s\n", dst)
			return nil
		},
	}
}
