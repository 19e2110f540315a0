package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cmmoran/filecaster/pkg/action/generate"
)

func init() {
	rootCmd.AddCommand(NewGenerateCommand())
}

func NewGenerateCommand() *cobra.Command {
	var genCmd = &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "write shadow structs",
		Long: `Generate scans every package under the input directory and writes one file per
package holding the shadow structs and their resolution code. A package with any
diagnostic is left untouched.`,
		PreRunE: bindOptionFlags,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			outputs, err := generate.Generate(opts)
			r := newReporter(os.Stderr)
			for _, out := range outputs {
				r.success("wrote %s (%d types)", out.Path, len(out.Types))
			}
			return err
		},
	}
	addOptionFlags(genCmd.Flags())

	return genCmd
}
