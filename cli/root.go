package cli

import (
	"github.com/jinzhu/gorm"
	"github.com/spf13/cobra"

	"gamefilm/config"
	"gamefilm/database"
	"gamefilm/services"
)

type Dependencies struct {
	ConfigFile string
	Config     *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gamefilm",
		Short:         "Multi-camera game film timeline server",
		Long:          "Serves the game film timeline API, indexes footage and inspects stored timelines.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if deps.Config != nil {
				return nil
			}
			cfg, err := config.Load(deps.ConfigFile)
			if err != nil {
				return err
			}
			deps.Config = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&deps.ConfigFile, "config", "c", "", "Config file (default: ./gamefilm.yaml or /config/gamefilm.yaml)")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewScanCmd(deps))
	rootCmd.AddCommand(NewInspectCmd(deps))
	rootCmd.AddCommand(NewPlayCmd(deps))

	return rootCmd
}

func (d *Dependencies) openDB() (*gorm.DB, error) {
	return database.Open(d.Config.DBDriver, d.Config.DBDSN, d.Config.DataPath)
}

func (d *Dependencies) newEditor(db *gorm.DB, library *services.LibraryService) *services.Editor {
	ed := services.NewEditor(services.NewTimelineStore(db), library, d.Config.Engine())
	ed.ResumeToleranceMs = d.Config.ResumeToleranceMs
	return ed
}
