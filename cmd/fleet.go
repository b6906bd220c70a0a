package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shriram-s7/fleetdispatch/core/fleet"
	"github.com/shriram-s7/fleetdispatch/core/model"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetValidateCmd = &cobra.Command{
	Use:   "validate <file.csv>",
	Short: "Parse a fleet CSV and report the trucks it defines",
	Args:  cobra.ExactArgs(1),
	RunE:  runFleetValidate,
}

func init() {
	fleetCmd.AddCommand(fleetValidateCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetValidate(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	depot := model.LatLng{Lat: cfg.Depot.Latitude, Lng: cfg.Depot.Longitude}
	trucks, err := fleet.ParseCSV(f, depot)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d trucks ok\n", len(trucks))
	for _, t := range trucks {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-12s fuel=%.0f capacity=%d speed=%.0fkm/h\n",
			t.ID, t.FuelCapacity, t.MaxCapacity, t.Speed)
	}
	return nil
}
