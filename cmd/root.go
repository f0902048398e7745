/*Package cmd wires the pipeline into the galquench command line tool.*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galquench/galquench/config"
	"github.com/galquench/galquench/version"
)

var rootCmd = &cobra.Command{
	Use:   "galquench",
	Short: "Merge subhalo catalogs and supplementary files into one record array",
	Long: `galquench loads a simulation's subhalo table and any number of
supplementary measurement catalogs, matches them by subfind ID, merges
them into a single record array, rescales units and applies range
selections, and writes the result as a .npy file.`,
	Version:       version.SourceVersion,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print an example pipeline configuration file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), config.Example)
	},
}

func init() {
	rootCmd.AddCommand(exampleCmd)
}

// Execute runs the command line tool.
func Execute() error {
	return rootCmd.Execute()
}
