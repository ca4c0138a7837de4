package compiler

import (
	"bufio"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/ethereum/go-ethereum/log"
	"github.com/naoina/toml"
	"github.com/pkg/errors"

	"github.com/lhaig/smartra/internal/backend"
	"github.com/lhaig/smartra/internal/transform"
)

// Config controls one compiler instance.
type Config struct {
	// TargetVersion is the Solidity version constraint written to the
	// pragma and recorded by @safe_math.
	TargetVersion string

	// Strict runs the structural checker on the transformed program and
	// blocks output when it reports errors.
	Strict bool

	// Lint attaches linter warnings to every result.
	Lint bool

	// Disabled lists decorator names to ignore, as if unregistered.
	Disabled []string `toml:",omitempty"`

	// CacheSize is the number of compiled sources kept in memory.
	// Zero disables the cache.
	CacheSize int

	// Emit names the output backend: solidity, smartra, ast or dump.
	Emit string
}

// Defaults contains the default settings.
var Defaults = Config{
	TargetVersion: transform.DefaultTargetVersion,
	Lint:          true,
	CacheSize:     128,
	Emit:          "solidity",
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// LoadConfig reads a TOML file on top of Defaults. An empty path returns
// the defaults.
func LoadConfig(file string) (Config, error) {
	cfg := Defaults
	cfg.Disabled = nil
	if file == "" {
		return cfg, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return cfg, errors.Wrap(err, "open config")
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "load config %s", file)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", file)
	}
	log.Debug("Loaded compiler config", "file", file, "emit", cfg.Emit, "strict", cfg.Strict)
	return cfg, nil
}

// Validate reports settings the compiler cannot honour.
func (c Config) Validate() error {
	if c.TargetVersion == "" {
		return errors.New("TargetVersion must not be empty")
	}
	if c.CacheSize < 0 {
		return errors.Errorf("CacheSize must not be negative, got %d", c.CacheSize)
	}
	if _, err := backend.Lookup(c.Emit); err != nil {
		return err
	}
	return nil
}

// Marshal renders the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return tomlSettings.Marshal(&c)
}

// key identifies the settings that change compiler output.
func (c Config) key() string {
	return fmt.Sprintf("%s|%v|%v|%v|%s", c.TargetVersion, c.Strict, c.Lint, c.Disabled, c.Emit)
}
