package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/robertosw/gamepad-bridge/internal/configpaths"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template for the bridge daemon"`
}

// ConfigInit scaffolds a config file with every bridge flag at its default,
// derived by reflecting over the command struct tags.
type ConfigInit struct {
	Format string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output string `help:"Destination file path (defaults to gamepad-bridge.<format>)"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

var marshalers = map[string]func(any) ([]byte, error){
	"json": func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "  ") },
	"yaml": func(v any) ([]byte, error) { return yaml.Marshal(v) },
	"toml": func(v any) ([]byte, error) { return toml.Marshal(v) },
}

func (c *ConfigInit) Run() error {
	format := strings.ToLower(c.Format)
	if format == "yml" {
		format = "yaml"
	}
	marshal, ok := marshalers[format]
	if !ok {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	dest := c.Output
	if dest == "" {
		dest = "gamepad-bridge." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := marshal(templateFromStruct(reflect.TypeOf(Bridge{})))
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// templateFromStruct walks a kong command struct and collects the default
// value of every flag, keyed the way the config file loaders expect: embeds
// with a prefix become nested sections, prefixless embeds are inlined.
func templateFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}

		if _, embedded := f.Tag.Lookup("embed"); embedded {
			section := strings.TrimSuffix(f.Tag.Get("prefix"), ".")
			sub := templateFromStruct(f.Type)
			if section == "" {
				for k, v := range sub {
					out[k] = v
				}
			} else {
				out[section] = sub
			}
			continue
		}

		if v := defaultValue(f.Type, f.Tag.Get("default")); v != nil {
			out[flagKey(f.Name)] = v
		}
	}
	return out
}

func flagKey(name string) string {
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func defaultValue(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	// Durations stay strings so the loaders re-parse the unit suffix.
	if t == reflect.TypeOf(time.Duration(0)) {
		if def == "" {
			return "0s"
		}
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		v, _ := strconv.ParseBool(def)
		return v
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, _ := strconv.ParseInt(def, 10, 64)
		return v
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, _ := strconv.ParseUint(def, 10, 64)
		return v
	case reflect.Float32, reflect.Float64:
		v, _ := strconv.ParseFloat(def, 64)
		return v
	case reflect.Struct:
		return templateFromStruct(t)
	default:
		return nil
	}
}
