package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"elafcatalog/internal/brands"
	"elafcatalog/internal/categorytree"
	"elafcatalog/internal/logging"
	"elafcatalog/internal/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

type cliOptions struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "cattree",
		Short: "Convert flat category exports into nested trees",
		Long: `cattree reads the flat category export of the Elaf storefront and writes
the nested category tree, and trims brand exports down to id and name.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.New(logging.Config{Level: level, Format: "console"})
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newBuildCmd(opts), newBrandsCmd(opts), newValidateCmd(opts))
	return root
}

func newBuildCmd(opts *cliOptions) *cobra.Command {
	var input, output string
	var rejectCycles bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the nested category tree",
		Long: `Build the nested category tree from a flat category export.

Examples:
  # Convert elaf_categories.json into nested_categories.json
  cattree build

  # Fail instead of dropping categories whose parents form a loop
  cattree build -i export.json -o tree.json --reject-cycles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := buildFile(input, categorytree.Options{RejectCycles: rejectCycles})
			if err != nil {
				return err
			}
			logReport(opts.logger, report)

			data, err := categorytree.MarshalForest(report.Forest)
			if err != nil {
				return fmt.Errorf("encode category tree: %w", err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %q: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d categories into %d root categories. Output saved to %q\n",
				report.Nodes(), len(report.Forest), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "elaf_categories.json", "flat category export")
	cmd.Flags().StringVarP(&output, "output", "o", "nested_categories.json", "nested tree output")
	cmd.Flags().BoolVar(&rejectCycles, "reject-cycles", false, "fail when parent links form a loop")
	return cmd
}

func newBrandsCmd(opts *cliOptions) *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "brands",
		Short: "Keep only the id and name of every brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := openInput(input)
			if err != nil {
				return err
			}
			defer f.Close()

			raw, err := brands.Decode(f)
			if err != nil {
				return invalidJSON(input, err)
			}
			cleaned := brands.Clean(raw)

			var buf bytes.Buffer
			if err := brands.Encode(&buf, cleaned); err != nil {
				return fmt.Errorf("encode brands: %w", err)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %q: %w", output, err)
			}

			opts.logger.Debug("cleaned brands", zap.String("input", input), zap.Int("brands", len(cleaned)))
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d brands. Saved to %q\n", len(cleaned), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "elaf_brands.json", "brand export")
	cmd.Flags().StringVarP(&output, "output", "o", "elaf_brands_cleaned.json", "cleaned brands output")
	return cmd
}

func newValidateCmd(opts *cliOptions) *cobra.Command {
	var input string
	var rejectCycles bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a category export without writing a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := buildFile(input, categorytree.Options{RejectCycles: rejectCycles})
			if err != nil {
				return err
			}
			logReport(opts.logger, report)
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "elaf_categories.json", "flat category export")
	cmd.Flags().BoolVar(&rejectCycles, "reject-cycles", false, "fail when parent links form a loop")
	return cmd
}

func buildFile(path string, opts categorytree.Options) (*categorytree.Report, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := categorytree.DecodeRecords(f)
	if err != nil {
		return nil, invalidJSON(path, err)
	}

	report, err := categorytree.BuildWithOptions(records, opts)
	if err != nil {
		return nil, fmt.Errorf("file %q: %w", path, err)
	}
	return report, nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %q was not found", path)
		}
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	return f, nil
}

func invalidJSON(path string, err error) error {
	return fmt.Errorf("file %q contains invalid JSON: %w", path, err)
}

func logReport(logger *zap.Logger, report *categorytree.Report) {
	if len(report.Collisions) > 0 {
		logger.Warn("category ids collide after normalization", zap.Strings("keys", report.Collisions))
	}
	if len(report.Unreachable) > 0 {
		logger.Warn("categories on a parent cycle were left out", zap.Strings("ids", report.Unreachable))
	}
}

func printReport(w io.Writer, report *categorytree.Report) {
	fmt.Fprintf(w, "roots:       %d\n", len(report.Forest))
	fmt.Fprintf(w, "nodes:       %d\n", report.Nodes())
	fmt.Fprintf(w, "depth:       %d\n", depth(report.Forest))
	fmt.Fprintf(w, "unreachable: %s\n", listOrNone(report.Unreachable))
	fmt.Fprintf(w, "collisions:  %s\n", listOrNone(report.Collisions))
}

func depth(forest []models.Node) int {
	deepest := 0
	for _, n := range forest {
		if d := 1 + depth(n.SubCategories); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
