package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvFileVar names an environment variable that may point at a .env file.
const EnvFileVar = "CREW_ENV_FILE"

var (
	envFilePath string
	helpEnv     bool
	parseOnce   sync.Once
	exportOnce  sync.Once
	exportErr   error
)

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New exports the .env file (once per process) and decodes the environment
// under prefix into T.
func New[T any](prefix string) (*T, error) {
	exportOnce.Do(func() {
		exportErr = exportEnvFile(resolveEnvPath())
	})
	if exportErr != nil {
		return nil, exportErr
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("config %s: %w", prefix, err)
	}
	return &conf, nil
}

// Usage writes the environment variables T reads under prefix to w.
func Usage[T any](w io.Writer, prefix string) error {
	var conf T
	return envconfig.Usagef(prefix, &conf, w, envconfig.DefaultTableFormat)
}

// HelpRequested reports whether the -help-env flag was given.
func HelpRequested() bool {
	parseFlags()
	return helpEnv
}

func exportEnvFile(path string) error {
	if path != "" {
		if err := exportEnvironment(path); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		return nil
	}
	if err := exportEnvironmentIfExists(".env"); err != nil {
		return fmt.Errorf("failed to load default env file: %w", err)
	}
	return nil
}

func parseFlags() {
	parseOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if flag.Lookup("help-env") == nil {
			flag.BoolVar(&helpEnv, "help-env", false, "print the environment variables read and exit")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
}

func resolveEnvPath() string {
	parseFlags()
	if p := strings.TrimSpace(envFilePath); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(EnvFileVar))
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

// exportEnvironment copies .env entries into the process environment without
// overriding variables that are already set.
func exportEnvironment(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
