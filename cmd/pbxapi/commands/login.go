package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
	"github.com/voipops-io/pbxapi-client/pkg/pbxclient"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		serverArg string
		username  string
		password  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a PBX server",
		Long:  "Authenticate with a PBX API endpoint and store the session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Get server endpoint or name
			originalInput := serverArg
			if serverArg == "" {
				serverArg = viper.GetString("server")
				originalInput = serverArg
			}

			// If still no server, try the current server from config
			if serverArg == "" {
				config := loadConfig()
				if config.CurrentServer != "" {
					if _, exists := config.Servers[config.CurrentServer]; exists {
						serverArg = config.CurrentServer
						originalInput = config.CurrentServer
					}
				}
			}

			if serverArg == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("PBX endpoint (or server name): ")
				serverArg, _ = reader.ReadString('\n')
				serverArg = strings.TrimSpace(serverArg)
				originalInput = serverArg
			}

			if serverArg == "" {
				return constants.ErrNoServersConfigured
			}

			// Resolve a configured name to its endpoint
			endpoint := resolveServerEndpoint(serverArg)

			normalizedEndpoint, err := normalizeEndpoint(endpoint)
			if err != nil {
				return fmt.Errorf("invalid endpoint: %w", err)
			}

			skipSSL := viper.GetBool("skip_ssl_validation")

			// Prompt for missing credentials
			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if username == "" {
				return constants.ErrUsernameRequired
			}

			if password == "" {
				fmt.Print("Password: ")
				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(bytePassword)
				fmt.Println()
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			// Create client and log in
			loginConfig := &pbxapi.Config{
				BaseURL:       normalizedEndpoint,
				SkipTLSVerify: skipSSL,
			}

			if viper.GetBool("verbose") {
				loginConfig.Debug = true
				loginConfig.Logger = verboseLogger()
			}

			client, err := pbxclient.New(loginConfig)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx := context.Background()
			if err := client.Authenticate(ctx, username, password); err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			session := client.Session()

			// Determine the key for storing the server config. A name that
			// already exists in config is preserved; direct URLs key by host.
			config := loadConfig()

			var configKey string
			if _, exists := config.Servers[originalInput]; exists {
				configKey = originalInput
			} else {
				configKey = extractHostFromEndpoint(normalizedEndpoint)
			}

			if config.Servers == nil {
				config.Servers = make(map[string]*ServerConfig)
			}

			serverConfig, exists := config.Servers[configKey]
			if !exists {
				serverConfig = &ServerConfig{
					Endpoint: normalizedEndpoint,
				}
				config.Servers[configKey] = serverConfig
			}

			// Store session information (tokens only, not the password)
			serverConfig.Username = username
			serverConfig.SkipSSLValidation = skipSSL
			serverConfig.AccessToken = session.AccessToken
			serverConfig.RefreshToken = session.RefreshToken

			if !session.ExpiresAt.IsZero() {
				expiresAt := session.ExpiresAt
				serverConfig.TokenExpiresAt = &expiresAt
			}

			now := time.Now()
			serverConfig.LastRefreshed = &now

			// Set as current server if this is the first one
			if config.CurrentServer == "" || len(config.Servers) == 1 {
				config.CurrentServer = configKey
			}

			// Save configuration
			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s\n", normalizedEndpoint)
			if config.CurrentServer == configKey {
				fmt.Printf("Server '%s' set as current target\n", configKey)
			}

			if !session.ExpiresAt.IsZero() {
				fmt.Printf("Token expires at: %s\n", session.ExpiresAt.Format(time.RFC3339))
			}

			return nil
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&serverArg, "server", "s", "", "PBX endpoint URL or server name from config")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for authentication")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout from a PBX server",
		Long:  "Clear the stored session tokens for a PBX server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			name := serverFlag
			if name == "" {
				name = config.CurrentServer
			}

			if name == "" {
				return constants.ErrNoServersConfigured
			}

			serverConfig, exists := config.Servers[name]
			if !exists {
				return fmt.Errorf("%w: '%s'", constants.ErrServerNotFound, name)
			}

			serverConfig.AccessToken = ""
			serverConfig.TokenExpiresAt = nil
			serverConfig.RefreshToken = ""
			serverConfig.LastRefreshed = nil

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged out from '%s'\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "logout from specific server")

	return cmd
}

// extractHostFromEndpoint extracts the host portion from a PBX endpoint.
func extractHostFromEndpoint(endpoint string) string {
	host := endpoint
	if strings.HasPrefix(host, "https://") {
		host = strings.TrimPrefix(host, "https://")
	} else if strings.HasPrefix(host, "http://") {
		host = strings.TrimPrefix(host, "http://")
	}

	// Remove path if present
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}

	// Remove port if present
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}

	return host
}
