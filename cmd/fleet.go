package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkervran/fleetsim/config"
	"github.com/mkervran/fleetsim/core/fleet"
	"github.com/mkervran/fleetsim/infra/logger"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the initial fleet placement",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	reg, err := fleet.New(cfg.Fleet, logger.New("fleet-ls"))
	if err != nil {
		return fmt.Errorf("fleet: %w", err)
	}
	for _, v := range reg.Snapshot() {
		accessible := ""
		if v.WheelchairAccessible {
			accessible = " wheelchair"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t(%.4f, %.4f)%s\n",
			v.ID, v.Location.Zone, v.Location.Lat, v.Location.Lon, accessible)
	}
	stats := reg.Statistics()
	fmt.Fprintf(cmd.OutOrStdout(), "total %d, wheelchair accessible %d\n",
		stats.Total, stats.Wheelchair)
	return nil
}
