package typer

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Options tunes a checker run. The zero value is usable; normalized fills
// in the defaults.
type Options struct {
	// Parallelism caps the number of definitions checked concurrently.
	// Zero or negative means one worker per CPU.
	Parallelism int `toml:"parallelism"`

	// CacheSize bounds the memoized Boolean formula operations, in
	// entries per operation kind.
	CacheSize int `toml:"cache-size"`

	// NoCache disables formula memoization entirely. Mostly useful to
	// rule the cache out while chasing a miscompare.
	NoCache bool `toml:"no-cache"`

	// LogLevel sets the slog level for checker logging: debug, info,
	// warn, or error.
	LogLevel string `toml:"log-level"`
}

// DefaultOptions returns the defaults used when no skein.toml is found.
func DefaultOptions() Options {
	return Options{
		Parallelism: runtime.GOMAXPROCS(0),
		CacheSize:   4096,
		LogLevel:    "info",
	}
}

func (o Options) normalized() Options {
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.GOMAXPROCS(0)
	}
	if o.CacheSize < 0 {
		o.CacheSize = 0
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
	return o
}

// LoadOptions reads a skein.toml file, layering it over the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, errors.Wrapf(err, "parsing %s", path)
	}
	return opts.normalized(), nil
}

// FindProjectOptions searches for a skein.toml starting from dir and
// walking up parent directories, stopping at a .git boundary. It returns
// the path it loaded and the options, or ("", defaults, nil) when no file
// is found.
func FindProjectOptions(dir string) (string, Options, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", Options{}, err
	}
	for {
		path := filepath.Join(dir, "skein.toml")
		if _, err := os.Stat(path); err == nil {
			opts, err := LoadOptions(path)
			if err != nil {
				return "", Options{}, err
			}
			return path, opts, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", DefaultOptions(), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", DefaultOptions(), nil
		}
		dir = parent
	}
}
