package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/networking"
	"github.com/GoCodeAlone/networking/auth"
	"github.com/GoCodeAlone/networking/feeders"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect client configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigSampleCommand())
	return cmd
}

func newConfigSampleCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a sample configuration file with every default applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := networking.GenerateSampleConfig(&networking.Config{}, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml, toml or json")
	return cmd
}

// configSource describes where netcall reads its configuration from.
type configSource struct {
	file      string
	envPrefix string
	baseURL   string
	timeout   time.Duration
	verbose   bool
}

// flagFeeder applies command line overrides last.
type flagFeeder struct {
	src *configSource
}

func (f flagFeeder) Feed(target any) error {
	cfg, ok := target.(*networking.Config)
	if !ok {
		return fmt.Errorf("%w: %T", networking.ErrConfigNotStruct, target)
	}
	if f.src.baseURL != "" {
		cfg.BaseURL = f.src.baseURL
	}
	if f.src.timeout > 0 {
		cfg.Timeout = f.src.timeout
	}
	if f.src.verbose {
		cfg.Verbose = true
	}
	return nil
}

func fileFeeder(path string) (networking.Feeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return feeders.NewYamlFeeder(path), nil
	case ".toml":
		return feeders.NewTomlFeeder(path), nil
	case ".json":
		return feeders.NewJSONFeeder(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", networking.ErrUnsupportedFormatType, path)
	}
}

// loadConfig feeds the file first, then the environment, then the flags.
func loadConfig(src *configSource) (*networking.Config, error) {
	var fs []networking.Feeder
	if src.file != "" {
		f, err := fileFeeder(src.file)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	if src.envPrefix != "" {
		fs = append(fs, feeders.NewAffixedEnvFeeder(src.envPrefix, ""))
	}
	fs = append(fs, flagFeeder{src: src})
	return networking.LoadConfig(fs...)
}

// loadOAuthConfig reads client credentials from PREFIX_OAUTH_* variables.
func loadOAuthConfig(envPrefix string) (*auth.ClientCredentialsConfig, error) {
	cfg := &auth.ClientCredentialsConfig{}
	if envPrefix == "" {
		return cfg, nil
	}
	if err := feeders.NewAffixedEnvFeeder(envPrefix+"_OAUTH", "").Feed(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
