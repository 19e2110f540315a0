package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cmmoran/filecaster/pkg/options"
)

// optionKeys maps flag names to the mapstructure keys of options.Options, so
// config files and FILECASTER_* env vars fill the same settings.
var optionKeys = map[string]string{
	"in-dir":            "in_dir",
	"out-file":          "out_file",
	"suffix":            "suffix",
	"types":             "types",
	"tags":              "tags",
	"merge":             "merge",
	"strict-directives": "strict_directives",
	"manifest":          "manifest",
}

func addOptionFlags(fs *pflag.FlagSet) {
	d := options.NewOptions()
	fs.StringP("in-dir", "i", d.InDir, "directory whose packages (./...) are scanned")
	fs.StringP("out-file", "o", d.OutFile, "name of the file generated in each package")
	fs.StringP("suffix", "s", d.Suffix, "suffix appended to struct names to form shadow names")
	fs.StringSliceP("types", "t", nil, "struct names to generate even without a //filecaster:generate marker")
	fs.StringSlice("tags", d.Tags, "serialization tags emitted on shadow fields")
	fs.Bool("merge", d.Merge, "emit the Merge method on shadow types")
	fs.Bool("strict-directives", d.StrictDirectives, "report a second default directive on a field instead of ignoring it")
	fs.String("manifest", d.Manifest, "manifest path relative to the module root")
}

// bindOptionFlags binds the invoked command's flags, so only one command's
// flags are ever bound to the shared viper keys.
func bindOptionFlags(c *cobra.Command, _ []string) error {
	for name, key := range optionKeys {
		if err := viper.BindPFlag(key, c.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func loadOptions() (*options.Options, error) {
	opts := options.NewOptions()
	if err := viper.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	if err := opts.Normalize(); err != nil {
		return nil, err
	}
	return opts, nil
}
