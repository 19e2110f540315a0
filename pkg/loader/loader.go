// Package loader decodes configuration sources into generated shadow types.
//
// Shadow fields are pointers, so every decoder leaves keys missing from the
// source as nil and resolution later fills them from their defaults.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cmmoran/filecaster"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
	HCL  Format = "hcl"
)

var ErrUnknownFormat = errors.New("unknown configuration format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".hcl":
		return HCL, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Decode unmarshals data in the given format into target, a pointer to a shadow.
func Decode(format Format, data []byte, target any) error {
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, target)
	case YAML:
		err = yaml.Unmarshal(data, target)
	case TOML:
		err = toml.Unmarshal(data, target)
	case HCL:
		err = decodeHCL("config.hcl", data, target)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", format, err)
	}
	return nil
}

func DecodeFile(path string, target any) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err = Decode(format, data, target); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("decoded configuration", "path", path, "format", format)
	return nil
}

// FromViper unmarshals the settings held by v into target through its
// mapstructure tags. Keys v knows nothing about stay absent.
func FromViper(v *viper.Viper, target any) error {
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("decode viper settings: %w", err)
	}
	return nil
}

// LoadFiles decodes every path into its own layer and merges the layers. The
// first path mentioning a field wins, so list the most specific source first.
func LoadFiles[S any, P filecaster.Merger[S]](paths ...string) (*S, error) {
	layers := make([]*S, 0, len(paths))
	for _, path := range paths {
		layer := new(S)
		if err := DecodeFile(path, layer); err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return filecaster.Merge[S, P](layers...), nil
}

// FromMap decodes loosely typed settings, such as parsed flags or environment
// maps, into target through its mapstructure tags. Strings convert to the
// field types they spell ("8080" to an int field).
func FromMap(settings map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(settings); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	return nil
}
