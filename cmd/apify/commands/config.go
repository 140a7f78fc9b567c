package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
	"github.com/metalwarrior665/apify-client-go/pkg/apifyclient"
)

const (
	configDirName  = ".apify"
	configFileName = "config.yml"

	keyToken   = "token"
	keyAPI     = "api"
	keyOutput  = "output"
	keyVerbose = "verbose"
)

// Config represents the CLI configuration persisted in ~/.apify/config.yml.
type Config struct {
	API    string `json:"api,omitempty"    yaml:"api,omitempty"`
	Token  string `json:"token,omitempty"  yaml:"token,omitempty"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the Apify CLI configuration stored in ~/.apify/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration. The token is masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Token != "" {
				config.Token = constants.MaskedSecret
			}

			return render(cmd, config, func(w io.Writer, c *Config) error {
				return propertyTable(w, [][]string{
					{"API", valueOrDefault(c.API, constants.DefaultBaseURL)},
					{"Token", valueOrDefault(c.Token, constants.NotAvailable)},
					{"Output", valueOrDefault(c.Output, OutputFormatTable)},
					{"Config File", valueOrDefault(viper.ConfigFileUsed(), constants.NotAvailable)},
				})
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of: api, token, output",
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadFileConfig()
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove one of: api, token, output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadFileConfig()
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch strings.ToLower(key) {
	case keyAPI:
		config.API = value
	case keyToken:
		config.Token = value
	case keyOutput:
		switch value {
		case "", OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, value)
		}
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// loadConfig returns the effective configuration: flags, then APIFY_*
// environment variables, then the config file.
func loadConfig() *Config {
	return &Config{
		API:    viper.GetString(keyAPI),
		Token:  viper.GetString(keyToken),
		Output: viper.GetString(keyOutput),
	}
}

// ConfigFilePath returns the file the configuration is read from and saved to.
func ConfigFilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, configDirName, configFileName), nil
}

// loadFileConfig reads only what is persisted, so saving it back never
// captures values that came from flags or the environment.
func loadFileConfig() (*Config, error) {
	configFile, err := ConfigFilePath()
	if err != nil {
		return nil, err
	}

	config := &Config{}

	// #nosec G304 -- configFile comes from the --config flag or the home directory
	data, err := os.ReadFile(configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func saveConfig(config *Config) error {
	configFile, err := ConfigFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateClient builds an API client from the effective configuration.
func CreateClient() (apify.Client, error) {
	return createClient(0)
}

func createClient(timeout time.Duration) (apify.Client, error) {
	config := loadConfig()

	client, err := apifyclient.New(&apify.Config{
		Token:       config.Token,
		BaseURL:     config.API,
		Debug:       viper.GetBool(keyVerbose),
		HTTPTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
