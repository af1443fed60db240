package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	ini "github.com/lars-t-hansen/ini"
)

// DefaultsFileName is the name of the user defaults file in $HOME.
const DefaultsFileName = ".tabarchive"

// DefaultsPath returns ~/.tabarchive, or "" when HOME is unset.
func DefaultsPath() string {
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return filepath.Join(filepath.Clean(home), DefaultsFileName)
}

// Load reads .env from the working directory when present, then the
// environment and ~/.tabarchive, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config load: .env: %w", err)
	}
	return LoadFile(DefaultsPath())
}

// LoadFile is Load without .env, reading defaults from the ini file at path.
// A missing file is not an error; an empty path skips the file.
func LoadFile(path string) (*Config, error) {
	var defaults io.Reader
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			defaults = f
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config load: %w", err)
		}
	}
	return LoadReader(defaults)
}

// LoadReader populates a Config from the environment, falling back to the
// ini text in defaults (may be nil) and then to the built-in defaults.
func LoadReader(defaults io.Reader) (*Config, error) {
	cfg := &Config{}

	p := ini.NewParser()
	fields := make(map[string]*ini.Field)
	declare(p, reflect.TypeOf(cfg).Elem(), fields)

	var store *ini.Store
	if defaults != nil {
		s, err := p.Parse(defaults)
		if err != nil {
			return nil, fmt.Errorf("config load: %s: %w", DefaultsFileName, err)
		}
		store = s
	}

	src := source{store: store, fields: fields}
	if err := src.loadStruct(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// declare registers one ini section per tagged struct field of t and one ini
// string field per tagged leaf, keyed "section.name".
func declare(p *ini.Parser, t reflect.Type, fields map[string]*ini.Field) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := sf.Tag.Get("ini")
		if sf.Type.Kind() != reflect.Struct || name == "" {
			continue
		}
		sec := p.AddSection(name)
		for j := 0; j < sf.Type.NumField(); j++ {
			leaf := sf.Type.Field(j).Tag.Get("ini")
			if leaf == "" {
				continue
			}
			fields[name+"."+leaf] = sec.AddString(leaf)
		}
	}
}

type source struct {
	store  *ini.Store
	fields map[string]*ini.Field
}

func (s source) lookupIni(section, name string) (string, bool) {
	if s.store == nil || section == "" || name == "" {
		return "", false
	}
	f, ok := s.fields[section+"."+name]
	if !ok || !f.Present(s.store) {
		return "", false
	}
	return os.ExpandEnv(f.StringVal(s.store)), true
}

// loadStruct recursively populates struct fields.
func (s source) loadStruct(v reflect.Value, section string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := s.loadStruct(fieldVal, field.Tag.Get("ini")); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := os.Getenv(envName)
		if value == "" {
			value, _ = s.lookupIni(section, field.Tag.Get("ini"))
		}
		if value == "" {
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("TABARCHIVE_LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("TABARCHIVE_LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	switch c.Convert.Format {
	case "table", "t", "fixed", "f":
	default:
		errs = append(errs, fmt.Sprintf("TABARCHIVE_FORMAT (%q) must be one of: table, fixed", c.Convert.Format))
	}
	if c.Convert.Chunks < 0 {
		errs = append(errs, fmt.Sprintf("TABARCHIVE_CHUNKS (%d) must be non-negative", c.Convert.Chunks))
	}
	if utf8.RuneCountInString(c.Convert.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("TABARCHIVE_DELIMITER (%q) must be a single character", c.Convert.Delimiter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// DelimiterRune returns the configured delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Convert.Delimiter)
	return r
}
