package cmd

import (
	"bufio"
	"fmt"
	go_io "io"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/galquench/galquench/catalog"
	"github.com/galquench/galquench/config"
	gio "github.com/galquench/galquench/io"
	"github.com/galquench/galquench/logging"
	"github.com/galquench/galquench/npy"
)

var (
	runYes     bool
	runVerbose bool
)

var runCmd = &cobra.Command{
	Use:   "run config.hcl",
	Short: "Run the pipeline described by a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if err := absolutePaths(cfg); err != nil {
			return err
		}
		if runVerbose {
			logging.Mode = logging.Debug
		}
		return runPipeline(
			cfg, osfs.New("/"),
			cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(),
		)
	},
}

func init() {
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false,
		"overwrite existing output without asking")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false,
		"report memory statistics when done")
	rootCmd.AddCommand(runCmd)
}

// absolutePaths resolves the configured paths against the working
// directory, since file access goes through a filesystem rooted at /.
func absolutePaths(cfg *config.Config) error {
	paths := []*string{&cfg.Output, &cfg.Subhalos.File}
	for i := range cfg.Supplementary {
		paths = append(paths, &cfg.Supplementary[i].File)
	}
	for _, p := range paths {
		resolved, err := abs(*p)
		if err != nil {
			return err
		}
		*p = resolved
	}
	return nil
}

func abs(path string) (string, error) { return filepath.Abs(path) }

// runPipeline executes a full run: read, unpack, match, merge, rescale,
// select, write. in and out drive the interactive overwrite prompt.
func runPipeline(
	cfg *config.Config, fs billy.Filesystem,
	in go_io.Reader, out, errw go_io.Writer,
) error {
	diag := logging.NewDiagnostics(errw)

	subhalos, err := loadSubhalos(cfg, fs)
	if err != nil {
		return err
	}
	supplementary, err := loadSupplementary(cfg, fs)
	if err != nil {
		return err
	}

	mapping := cfg.ColumnMapping()
	for _, c := range append([]*catalog.Catalog{subhalos}, supplementary...) {
		if _, err := catalog.UnpackColumns(c, mapping); err != nil {
			return err
		}
	}

	if err := catalog.MatchSubfind(supplementary, subhalos.Count()); err != nil {
		return err
	}
	arr, err := catalog.Merge(subhalos, supplementary)
	if err != nil {
		return err
	}

	catalog.ApplyUnits(arr, cfg.UnitScalings(), diag)

	sel, err := catalog.ApplySelection(arr, cfg.Bounds(), cfg.OnlyFinite, diag)
	if err != nil {
		return err
	}

	if !runYes && !confirmOverwrite(fs, cfg.Output, in, out) {
		fmt.Fprintln(out, "Job completed but not saved.")
		return nil
	}
	if err := npy.Save(fs, cfg.Output, sel); err != nil {
		return err
	}
	fmt.Fprintf(out, "Job completed. Output saved to `%s`.\n", cfg.Output)

	if logging.Mode == logging.Debug {
		fmt.Fprintln(errw, logging.MemString())
	}
	return nil
}

func loadSubhalos(
	cfg *config.Config, fs billy.Filesystem,
) (*catalog.Catalog, error) {
	src, closeSrc, err := openSource(fs, cfg.Subhalos.File)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	return gio.ReadSubhalos(src, gio.Options{
		Keys:     cfg.Subhalos.Fields,
		Snapshot: cfg.Subhalos.SnapshotNumber(),
	})
}

func loadSupplementary(
	cfg *config.Config, fs billy.Filesystem,
) ([]*catalog.Catalog, error) {
	cats := make([]*catalog.Catalog, len(cfg.Supplementary))
	for i, s := range cfg.Supplementary {
		src, closeSrc, err := openSource(fs, s.File)
		if err != nil {
			return nil, err
		}

		cats[i], err = gio.ReadSupplementary(src, s.SubfindID, gio.Options{
			Keys:     s.Keys,
			SkipKeys: s.SkipKeys,
			Snapshot: s.SnapshotNumber(),
		})
		closeSrc()
		if err != nil {
			return nil, err
		}
	}
	return cats, nil
}

// openSource dispatches on the file extension. SQLite goes through
// database/sql and needs a real path, so it bypasses the billy filesystem.
func openSource(
	fs billy.Filesystem, path string,
) (gio.Source, func() error, error) {
	switch filepath.Ext(path) {
	case ".gqb":
		src, err := gio.OpenGQB(fs, path)
		if err != nil {
			return nil, nil, err
		}
		return src, func() error { return nil }, nil
	case ".sqlite", ".db":
		src, err := gio.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}
	return nil, nil, fmt.Errorf(
		"unrecognized catalog format for `%s`, expected .gqb, .sqlite or .db",
		path,
	)
}

// confirmOverwrite asks before replacing an existing output file. EOF and
// `Y` accept, `n` declines, anything else asks again.
func confirmOverwrite(
	fs billy.Filesystem, path string, in go_io.Reader, out go_io.Writer,
) bool {
	if _, err := fs.Stat(path); err != nil {
		return true
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "File `%s` exists. Overwrite? [Y, n] ", path)
		if !sc.Scan() {
			return true
		}
		ans := strings.TrimSpace(sc.Text())
		switch ans {
		case "Y":
			return true
		case "n":
			return false
		}
		fmt.Fprintf(out, "Invalid input `%s`. Must be one of `[Y n]`.\n", ans)
	}
}
