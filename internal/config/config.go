// Package config loads tabarchive settings from the environment, an optional
// .env file and the user defaults file ~/.tabarchive.
//
// Precedence, highest first: command flags (applied by the caller), the
// process environment, .env, ~/.tabarchive, built-in defaults.
package config

// Config holds all tool configuration.
type Config struct {
	Logging LoggingConfig `ini:"logging"`
	Convert ConvertConfig `ini:"convert"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `env:"TABARCHIVE_LOG_LEVEL" ini:"level" default:"info"`

	// Format is text or json (default: text)
	Format string `env:"TABARCHIVE_LOG_FORMAT" ini:"format" default:"text"`
}

// ConvertConfig holds the defaults of the convert command.
type ConvertConfig struct {
	// Out is the archive written by convert (default: ./all.tbla)
	Out string `env:"TABARCHIVE_OUT" ini:"out" default:"./all.tbla"`

	// Suffix selects the input files (default: .csv)
	Suffix string `env:"TABARCHIVE_SUFFIX" ini:"suffix" default:".csv"`

	// Key is the table key inside the archive (default: main)
	Key string `env:"TABARCHIVE_KEY" ini:"key" default:"main"`

	// Format is the storage format of new tables, table or fixed (default: table)
	Format string `env:"TABARCHIVE_FORMAT" ini:"format" default:"table"`

	// Chunks is the partition count; 0 disables partitioning (default: 0)
	Chunks int `env:"TABARCHIVE_CHUNKS" ini:"chunks" default:"0"`

	// Delimiter separates fields in the input files (default: ,)
	Delimiter string `env:"TABARCHIVE_DELIMITER" ini:"delimiter" default:","`
}
