package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmmoran/filecaster/pkg/action/check"
)

var errOutOfDate = errors.New("generated files are out of date, run filecaster generate")

func init() {
	rootCmd.AddCommand(NewCheckCommand())
}

func NewCheckCommand() *cobra.Command {
	var showDiff bool

	var checkCmd = &cobra.Command{
		Use:   "check",
		Short: "verify generated files are up to date",
		Long: `Check regenerates every package in memory and compares the result with the files
on disk and the manifest. It exits non-zero when a file is missing, differs or is
recorded but no longer generated.`,
		PreRunE: bindOptionFlags,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			findings, err := check.Check(opts)
			r := newReporter(os.Stderr)
			r.findings(findings, showDiff)
			if len(findings) > 0 {
				err = errors.Join(err, fmt.Errorf("%w: %d file(s)", errOutOfDate, len(findings)))
			}
			if err == nil {
				r.success("generated files are up to date")
			}
			return err
		},
	}
	addOptionFlags(checkCmd.Flags())
	checkCmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "print the difference for drifted files")

	return checkCmd
}
