package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mkervran/fleetsim/scenario"
)

var (
	genOut        string
	genName       string
	genCount      int
	genSeed       int64
	genWheelchair float64
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Scenario related commands",
}

var scenarioGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic request workload",
	RunE:  runScenarioGen,
}

func init() {
	scenarioGenCmd.Flags().StringVarP(&genOut, "out", "o", "scenario.yaml", "output file")
	scenarioGenCmd.Flags().StringVar(&genName, "name", "generated", "scenario name")
	scenarioGenCmd.Flags().IntVar(&genCount, "count", 50, "number of requests")
	scenarioGenCmd.Flags().Int64Var(&genSeed, "seed", 0, "generator seed")
	scenarioGenCmd.Flags().Float64Var(&genWheelchair, "wheelchair-ratio", 0.1, "fraction of wheelchair requests")
	scenarioCmd.AddCommand(scenarioGenCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioGen(cmd *cobra.Command, args []string) error {
	reqs, err := scenario.Generate(scenario.GeneratorConfig{
		Count:           genCount,
		Seed:            genSeed,
		WheelchairRatio: genWheelchair,
	})
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(scenario.FromRequests(genName, reqs))
	if err != nil {
		return err
	}
	if err := os.WriteFile(genOut, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d requests to %s\n", len(reqs), genOut)
	return nil
}
