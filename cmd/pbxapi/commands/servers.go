package commands

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"gopkg.in/yaml.v3"
)

// NewServersCommand creates the servers command group
func NewServersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "servers",
		Aliases: []string{"server"},
		Short:   "Manage PBX servers",
		Long:    "Add, list, delete, and target PBX API endpoints",
	}

	cmd.AddCommand(newServersAddCommand())
	cmd.AddCommand(newServersListCommand())
	cmd.AddCommand(newServersDeleteCommand())
	cmd.AddCommand(newServersUseCommand())

	return cmd
}

func newServersAddCommand() *cobra.Command {
	var skipSSLValidation bool

	cmd := &cobra.Command{
		Use:   "add NAME ENDPOINT",
		Short: "Add a new PBX server",
		Long:  "Add a new PBX API endpoint to the configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			endpoint := args[1]

			// Validate and normalize the endpoint
			normalizedEndpoint, err := normalizeEndpoint(endpoint)
			if err != nil {
				return fmt.Errorf("invalid endpoint: %w", err)
			}

			// Load current configuration
			config := loadConfig()

			if config.Servers == nil {
				config.Servers = make(map[string]*ServerConfig)
			}

			// Check if the server already exists
			if _, exists := config.Servers[name]; exists {
				return fmt.Errorf("server '%s' already exists", name)
			}

			config.Servers[name] = &ServerConfig{
				Endpoint:          normalizedEndpoint,
				SkipSSLValidation: skipSSLValidation,
			}

			// If this is the first server, make it current
			if config.CurrentServer == "" {
				config.CurrentServer = name
				fmt.Printf("Server '%s' (%s) added and set as current target\n", name, normalizedEndpoint)
			} else {
				fmt.Printf("Server '%s' (%s) added\n", name, normalizedEndpoint)
			}

			// Save configuration
			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSSLValidation, "skip-ssl-validation", false, "Skip SSL certificate validation")

	return cmd
}

func newServersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all PBX servers",
		Long:  "Display all configured PBX API endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if len(config.Servers) == 0 {
				fmt.Println("No servers configured. Use 'pbxapi servers add' to add one.")
				return nil
			}

			// Output results
			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				type ServerInfo struct {
					Name              string `json:"name"`
					Endpoint          string `json:"endpoint"`
					Username          string `json:"username,omitempty"`
					SkipSSLValidation bool   `json:"skip_ssl_validation"`
					Current           bool   `json:"current"`
				}

				var servers []ServerInfo
				for name, serverConfig := range config.Servers {
					servers = append(servers, ServerInfo{
						Name:              name,
						Endpoint:          serverConfig.Endpoint,
						Username:          serverConfig.Username,
						SkipSSLValidation: serverConfig.SkipSSLValidation,
						Current:           name == config.CurrentServer,
					})
				}

				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(servers)

			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)
				return encoder.Encode(config.Servers)

			default:
				fmt.Println("Configured servers:")
				for name, serverConfig := range config.Servers {
					current := ""
					if name == config.CurrentServer {
						current = " (current)"
					}
					fmt.Printf("  %s%s\n", name, current)
					fmt.Printf("    Endpoint: %s\n", serverConfig.Endpoint)
					if serverConfig.Username != "" {
						fmt.Printf("    User:     %s\n", serverConfig.Username)
					}
					if serverConfig.SkipSSLValidation {
						fmt.Printf("    Skip SSL: %v\n", serverConfig.SkipSSLValidation)
					}
					fmt.Println()
				}
			}

			return nil
		},
	}
}

func newServersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a PBX server",
		Long:  "Remove a PBX API endpoint from the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			// Load current configuration
			config := loadConfig()

			// Check if the server exists
			if _, exists := config.Servers[name]; !exists {
				return fmt.Errorf("%w: '%s'", constants.ErrServerNotFound, name)
			}

			// Don't allow deleting the last server if it's current
			if len(config.Servers) == 1 && config.CurrentServer == name {
				return constants.ErrLastServer
			}

			// Remove from configuration
			delete(config.Servers, name)

			// If this was the current server, switch to another one
			if config.CurrentServer == name {
				if len(config.Servers) > 0 {
					// Set the first remaining server as current
					for newName := range config.Servers {
						config.CurrentServer = newName
						break
					}
					fmt.Printf("Server '%s' deleted. Current server switched to '%s'\n", name, config.CurrentServer)
				} else {
					config.CurrentServer = ""
					fmt.Printf("Server '%s' deleted. No servers remaining.\n", name)
				}
			} else {
				fmt.Printf("Server '%s' deleted\n", name)
			}

			// Save configuration
			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			return nil
		},
	}
}

func newServersUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "use NAME",
		Aliases: []string{"target"},
		Short:   "Target a PBX server",
		Long:    "Set a PBX server as the current target",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			// Load current configuration
			config := loadConfig()

			// Check if the server exists
			if _, exists := config.Servers[name]; !exists {
				return fmt.Errorf("%w, use 'pbxapi servers list' to see available servers: '%s'", constants.ErrServerNotFound, name)
			}

			// Set as current
			config.CurrentServer = name

			// Save configuration
			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Server '%s' is now the current target\n", name)
			return nil
		},
	}
}

// normalizeEndpoint validates and normalizes a PBX endpoint URL. The /pbxapi
// root is not appended here; the client adds it when building requests.
func normalizeEndpoint(endpoint string) (string, error) {
	// Add https:// if no protocol is specified
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	// Parse URL to validate
	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	// Ensure we have a host
	if parsedURL.Host == "" {
		return "", constants.ErrEndpointHostMissing
	}

	// Remove trailing slash and path for consistency
	normalizedURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	return normalizedURL, nil
}
