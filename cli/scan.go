package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gamefilm/services"
)

func NewScanCmd(deps *Dependencies) *cobra.Command {
	var footage string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Index the footage directory once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if footage == "" {
				footage = deps.Config.FootagePath
			}
			db, err := deps.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			library := services.NewLibraryService(footage, db, nil)
			n := library.ScanAll(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %d videos from %s\n", n, footage)
			return nil
		},
	}

	cmd.Flags().StringVar(&footage, "footage", "", "Footage directory (overrides config)")
	return cmd
}
