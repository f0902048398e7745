/*galquench loads, merges and filters subhalo catalogs and supplementary
measurement files into a single record array for quenching analysis.*/
package main

import (
	"os"

	"github.com/galquench/galquench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
