package cmd

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	gio "github.com/galquench/galquench/io"
)

var inspectSnapshot int

var inspectCmd = &cobra.Command{
	Use:   "inspect file",
	Short: "List the keys of a catalog file",
	Long: `inspect prints the datasets and groups of a catalog file, with
row counts and widths, which is handy for finding the subfind ID key and
field names a pipeline configuration needs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := abs(args[0])
		if err != nil {
			return err
		}

		src, closeSrc, err := openSource(osfs.New("/"), path)
		if err != nil {
			return err
		}
		defer closeSrc()

		if inspectSnapshot != gio.NoSnapshot {
			src, err = src.Group(fmt.Sprintf("Snapshot_%d", inspectSnapshot))
			if err != nil {
				return err
			}
		}
		return printKeys(cmd, src, "")
	},
}

func init() {
	inspectCmd.Flags().IntVar(&inspectSnapshot, "snapshot", gio.NoSnapshot,
		"descend into the Snapshot_{n} group first")
	rootCmd.AddCommand(inspectCmd)
}

func printKeys(cmd *cobra.Command, src gio.Source, indent string) error {
	keys, err := src.Keys()
	if err != nil {
		return err
	}

	for _, key := range keys {
		isGroup, err := src.IsGroup(key)
		if err != nil {
			return err
		}
		if isGroup {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s/\n", indent, key)
			g, err := src.Group(key)
			if err != nil {
				return err
			}
			if err := printKeys(cmd, g, indent+"    "); err != nil {
				return err
			}
			continue
		}

		col, err := src.Dataset(key)
		if err != nil {
			return err
		}
		if col.Width() == 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%d rows)\n",
				indent, key, col.Len())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%d rows, width %d)\n",
				indent, key, col.Len(), col.Width())
		}
	}
	return nil
}
