package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/wassel-delivery/dispatch/config"
)

var zoneFile string

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Print the configured delivery zones",
	RunE:  printZones,
}

func init() {
	zonesCmd.Flags().StringVar(&zoneFile, "file", "", "standalone zone file to load instead of the main config")
	rootCmd.AddCommand(zonesCmd)
}

func printZones(cmd *cobra.Command, args []string) error {
	var zones []config.ZoneConfig
	if zoneFile != "" {
		loaded, err := config.LoadZonesFile(zoneFile)
		if err != nil {
			return err
		}
		zones = loaded
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		zones = cfg.Zones
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(zones)
}
