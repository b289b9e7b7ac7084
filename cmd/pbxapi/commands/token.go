package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/voipops-io/pbxapi-client/internal/auth"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"gopkg.in/yaml.v3"
)

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage session tokens",
		Long:  "Commands for managing PBX session tokens including status and renewal",
	}

	cmd.AddCommand(newTokenStatusCommand())
	cmd.AddCommand(newTokenRenewCommand())

	return cmd
}

func newTokenStatusCommand() *cobra.Command {
	var (
		serverFlag string
		showAll    bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show token status and expiration",
		Long:  "Display information about the current session token including expiration time",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// If --all flag is specified, show all servers
			if showAll {
				if len(config.Servers) == 0 {
					return constants.ErrNoServersConfigured
				}

				return displayAllTokenStatus(config)
			}

			// If no server specified, show the current server or all servers
			if serverFlag == "" {
				if len(config.Servers) == 0 {
					return constants.ErrNoServersConfigured
				}

				if config.CurrentServer != "" {
					if serverConfig, exists := config.Servers[config.CurrentServer]; exists {
						return displayTokenStatus(serverConfig, config.CurrentServer)
					}
				}

				return displayAllTokenStatus(config)
			}

			// Get specific server config
			serverConfig, err := getServerConfigByFlag(serverFlag)
			if err != nil {
				return err
			}

			serverName, err := findServerName(serverConfig, serverFlag)
			if err != nil {
				return err
			}

			return displayTokenStatus(serverConfig, serverName)
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "show token status for specific server")
	cmd.Flags().BoolVar(&showAll, "all", false, "show token status for all configured servers")

	return cmd
}

func newTokenRenewCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Manually renew the session token",
		Long:  "Force a token renewal using the stored refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig, err := getServerConfigByFlag(serverFlag)
			if err != nil {
				return err
			}

			// Check if we have a refresh token
			if serverConfig.RefreshToken == "" {
				return constants.ErrNoRefreshToken
			}

			serverName, err := findServerName(serverConfig, serverFlag)
			if err != nil {
				return err
			}

			return renewSessionToken(serverFlag, serverName)
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "renew token for specific server")

	return cmd
}

// renewSessionToken forces a renewal through the client; the config-backed
// token manager persists the new session as a side effect.
func renewSessionToken(serverFlag, serverName string) error {
	_, _ = fmt.Fprintf(os.Stdout, "Renewing token for server: %s\n", serverName)

	client, err := CreateClientWithServer(serverFlag)
	if err != nil {
		return err
	}

	ctx := context.Background()

	err = client.RenewToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to renew token: %w", err)
	}

	_, _ = os.Stdout.WriteString("Token renewed successfully!\n")

	session := client.Session()
	if !session.ExpiresAt.IsZero() {
		_, _ = fmt.Fprintf(os.Stdout, "New token expires at: %s\n", session.ExpiresAt.Format(time.RFC3339))
		_, _ = fmt.Fprintf(os.Stdout, "Time until expiry: %s\n", time.Until(session.ExpiresAt).String())
	}

	return nil
}

func displayTokenStatus(serverConfig *ServerConfig, serverName string) error {
	output := viper.GetString("output")
	tokenStatus := buildTokenStatusData(serverConfig, serverName)

	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(tokenStatus)
		if err != nil {
			return fmt.Errorf("encoding token status to JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(tokenStatus)
		if err != nil {
			return fmt.Errorf("failed to encode token status as YAML: %w", err)
		}

		return nil
	default:
		return displayTokenStatusTable(tokenStatus)
	}
}

func displayTokenStatusTable(tokenStatus map[string]interface{}) error {
	_, _ = fmt.Fprintf(os.Stdout, "Token status for server: %s\n", tokenStatus["server"])
	_, _ = fmt.Fprintf(os.Stdout, "Endpoint: %s\n\n", tokenStatus["endpoint"])

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	err := table.Append([]string{"Authenticated", fmt.Sprintf("%v", tokenStatus["authenticated"])})
	if err != nil {
		return fmt.Errorf("failed to append authenticated status: %w", err)
	}

	err = table.Append([]string{"Status", fmt.Sprintf("%v", tokenStatus["status"])})
	if err != nil {
		return fmt.Errorf("failed to append status: %w", err)
	}

	optionalRows := []struct {
		key   string
		label string
	}{
		{"expiry_status", "Expiry Status"},
		{"expires_at", "Expires At"},
		{"time_until_expiry", "Time Until Expiry"},
		{"last_refreshed", "Last Refreshed"},
		{"refresh_token_available", "Refresh Token Available"},
	}

	for _, row := range optionalRows {
		if value, ok := tokenStatus[row.key]; ok {
			err := table.Append([]string{row.label, fmt.Sprintf("%v", value)})
			if err != nil {
				return fmt.Errorf("failed to append %s to table: %w", row.label, err)
			}
		}
	}

	err = table.Render()
	if err != nil {
		return fmt.Errorf("failed to render token status table: %w", err)
	}

	return nil
}

func displayAllTokenStatus(config *Config) error {
	output := viper.GetString("output")

	if output == constants.FormatJSON || output == constants.FormatYAML {
		// For structured output, show all servers in one object
		allStatus := make(map[string]interface{})

		for name, serverConfig := range config.Servers {
			allStatus[name] = buildTokenStatusData(serverConfig, name)
		}

		switch output {
		case constants.FormatJSON:
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			err := encoder.Encode(allStatus)
			if err != nil {
				return fmt.Errorf("encoding all token status to JSON: %w", err)
			}

			return nil
		case constants.FormatYAML:
			encoder := yaml.NewEncoder(os.Stdout)

			err := encoder.Encode(allStatus)
			if err != nil {
				return fmt.Errorf("failed to encode all status as YAML: %w", err)
			}

			return nil
		}
	}

	// For table output, show each server separately
	first := true
	for name, serverConfig := range config.Servers {
		if !first {
			_, _ = os.Stdout.WriteString("\n")
		}

		first = false

		err := displayTokenStatus(serverConfig, name)
		if err != nil {
			return err
		}
	}

	return nil
}

func buildTokenStatusData(serverConfig *ServerConfig, serverName string) map[string]interface{} {
	tokenStatus := map[string]interface{}{
		"server":   serverName,
		"endpoint": serverConfig.Endpoint,
	}

	if serverConfig.AccessToken == "" {
		tokenStatus["status"] = "No token"
		tokenStatus["authenticated"] = false

		return tokenStatus
	}

	tokenStatus["status"] = "Token present"
	tokenStatus["authenticated"] = true

	expiresAt := getTokenExpiration(serverConfig)
	if expiresAt != nil {
		addExpirationInfo(tokenStatus, expiresAt)
	} else {
		tokenStatus["expiry_status"] = "Unknown expiration"
	}

	if serverConfig.LastRefreshed != nil {
		tokenStatus["last_refreshed"] = serverConfig.LastRefreshed.Format(time.RFC3339)
	}

	tokenStatus["refresh_token_available"] = serverConfig.RefreshToken != ""

	return tokenStatus
}

// getTokenExpiration gets the token expiration time from config or from the
// JWT itself.
func getTokenExpiration(serverConfig *ServerConfig) *time.Time {
	if serverConfig.TokenExpiresAt != nil {
		return serverConfig.TokenExpiresAt
	}

	jwtExp, err := auth.TokenExpiry(serverConfig.AccessToken)
	if err == nil {
		return &jwtExp
	}

	return nil
}

// addExpirationInfo adds expiration status and timing information.
func addExpirationInfo(tokenStatus map[string]interface{}, expiresAt *time.Time) {
	tokenStatus["expires_at"] = expiresAt.Format(time.RFC3339)

	timeUntilExpiry := time.Until(*expiresAt)

	switch {
	case timeUntilExpiry <= 0:
		tokenStatus["expiry_status"] = "Expired"
	case timeUntilExpiry <= 5*time.Minute:
		tokenStatus["expiry_status"] = "Expires soon"
	default:
		tokenStatus["expiry_status"] = "Valid"
	}

	tokenStatus["time_until_expiry"] = timeUntilExpiry.String()
}
