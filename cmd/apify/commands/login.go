package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var noVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Long: `Store an Apify API token in the CLI configuration.

The token is taken from --token or APIFY_TOKEN, otherwise it is read from the
terminal without echo. Unless --no-verify is given, the token is checked by
listing one dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := viper.GetString(keyToken)
			if token == "" {
				entered, err := promptToken(cmd)
				if err != nil {
					return err
				}

				token = entered
			}

			if token == "" {
				return constants.ErrEmptyTokenEntered
			}

			viper.Set(keyToken, token)

			if !noVerify {
				err := verifyToken(cmd)
				if err != nil {
					return err
				}
			}

			config, err := loadFileConfig()
			if err != nil {
				return err
			}

			config.Token = token

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token saved")

			return nil
		},
	}

	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "store the token without checking it against the API")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadFileConfig()
			if err != nil {
				return err
			}

			if config.Token == "" {
				return constants.ErrNoTokenConfigured
			}

			config.Token = ""

			err = saveConfig(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Token removed")

			return nil
		},
	}
}

func promptToken(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "API token: ")

	file, ok := cmd.InOrStdin().(*os.File)
	if ok && term.IsTerminal(int(file.Fd())) { // #nosec G115 -- file descriptors fit in int
		tokenBytes, err := term.ReadPassword(int(file.Fd())) // #nosec G115
		_, _ = fmt.Fprintln(cmd.OutOrStdout())

		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		return strings.TrimSpace(string(tokenBytes)), nil
	}

	var token string

	_, err := fmt.Fscanln(cmd.InOrStdin(), &token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", constants.ErrReadingInput, err)
	}

	return strings.TrimSpace(token), nil
}

func verifyToken(cmd *cobra.Command) error {
	client, err := createClient(constants.ShortHTTPTimeout)
	if err != nil {
		return err
	}

	_, err = client.Datasets().List(cmd.Context(), apify.NewListParams().WithLimit(1))
	if err != nil {
		return fmt.Errorf("token verification failed: %w", err)
	}

	return nil
}
