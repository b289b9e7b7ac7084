package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/voipops-io/pbxapi-client/internal/auth"
	"github.com/voipops-io/pbxapi-client/internal/client"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	// Multi-server configuration
	Servers       map[string]*ServerConfig `json:"servers,omitempty"        yaml:"servers,omitempty"`
	CurrentServer string                   `json:"current_server,omitempty" yaml:"current_server,omitempty"`

	// Global settings
	Output  string `json:"output"   yaml:"output"`
	NoColor bool   `json:"no_color" yaml:"no_color"`
}

// ServerConfig represents configuration for a single PBX server.
type ServerConfig struct {
	Endpoint          string     `json:"endpoint"                    yaml:"endpoint"`
	Username          string     `json:"username,omitempty"          yaml:"username,omitempty"`
	AccessToken       string     `json:"access_token,omitempty"      yaml:"access_token,omitempty"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"  yaml:"token_expires_at,omitempty"`
	RefreshToken      string     `json:"refresh_token,omitempty"     yaml:"refresh_token,omitempty"`
	LastRefreshed     *time.Time `json:"last_refreshed,omitempty"    yaml:"last_refreshed,omitempty"`
	SkipSSLValidation bool       `json:"skip_ssl_validation"         yaml:"skip_ssl_validation"`
	ReloadPath        string     `json:"reload_path,omitempty"       yaml:"reload_path,omitempty"`
	ReloadMethod      string     `json:"reload_method,omitempty"     yaml:"reload_method,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage pbxapi CLI configuration including servers and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration (global or server-specific)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// If --server flag is provided, show only that server's configuration
			if serverFlag != "" {
				return showServerSpecificConfig(config, serverFlag)
			}

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(config)
			default:
				return displayConfigTable(config)
			}
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "show configuration for specific server")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a specific configuration value (global or server-specific)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			// If --server flag is provided, set server-specific configuration
			if serverFlag != "" {
				return setServerSpecificConfig(config, serverFlag, key, value)
			}

			// Otherwise set global configuration
			return setGlobalConfig(config, key, value)
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "target specific server for configuration")

	return cmd
}

func newConfigUnsetCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a specific configuration value (global or server-specific)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			// If --server flag is provided, unset server-specific configuration
			if serverFlag != "" {
				return unsetServerSpecificConfig(config, serverFlag, key)
			}

			// Otherwise unset global configuration
			return unsetGlobalConfig(config, key)
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "target specific server for configuration")

	return cmd
}

func newConfigClearCommand() *cobra.Command {
	var serverFlag string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove all configuration settings (global or server-specific)",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			// If --server flag is provided, clear only that server's configuration
			if serverFlag != "" {
				return clearServerSpecificConfig(config, serverFlag)
			}

			// Otherwise clear all configuration
			configFile := viper.ConfigFileUsed()
			if configFile == "" {
				home, _ := os.UserHomeDir()
				configFile = filepath.Join(home, ".pbxapi", "config.yml")
			}

			err := os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			fmt.Println("Cleared all configuration")

			return nil
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "clear configuration for specific server only")

	return cmd
}

func loadConfig() *Config {
	config := &Config{
		Output:        viper.GetString("output"),
		NoColor:       viper.GetBool("no_color"),
		Servers:       make(map[string]*ServerConfig),
		CurrentServer: viper.GetString("current_server"),
	}

	serversRaw := viper.GetStringMap("servers")
	for name, serverRaw := range serversRaw {
		if serverMap, ok := serverRaw.(map[string]interface{}); ok {
			config.Servers[name] = parseServerConfig(serverMap)
		}
	}

	return config
}

// parseServerConfig parses one server entry from the raw viper map.
func parseServerConfig(serverMap map[string]interface{}) *ServerConfig {
	serverConfig := &ServerConfig{}

	stringFields := map[string]*string{
		"endpoint":      &serverConfig.Endpoint,
		"username":      &serverConfig.Username,
		"access_token":  &serverConfig.AccessToken,
		"refresh_token": &serverConfig.RefreshToken,
		"reload_path":   &serverConfig.ReloadPath,
		"reload_method": &serverConfig.ReloadMethod,
	}

	for key, field := range stringFields {
		if value, ok := serverMap[key].(string); ok {
			*field = value
		}
	}

	if skipSSL, ok := serverMap["skip_ssl_validation"].(bool); ok {
		serverConfig.SkipSSLValidation = skipSSL
	}

	parseServerTimestampFields(serverConfig, serverMap)

	return serverConfig
}

// parseServerTimestampFields parses timestamp fields in a server entry.
func parseServerTimestampFields(serverConfig *ServerConfig, serverMap map[string]interface{}) {
	if expiresAtStr, ok := serverMap["token_expires_at"].(string); ok && expiresAtStr != "" {
		t, err := time.Parse(time.RFC3339, expiresAtStr)
		if err == nil {
			serverConfig.TokenExpiresAt = &t
		}
	}

	if lastRefreshedStr, ok := serverMap["last_refreshed"].(string); ok && lastRefreshedStr != "" {
		t, err := time.Parse(time.RFC3339, lastRefreshedStr)
		if err == nil {
			serverConfig.LastRefreshed = &t
		}
	}
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".pbxapi")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
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

// getCurrentServerConfig returns the configuration for the currently
// targeted server.
func getCurrentServerConfig() (*ServerConfig, error) {
	config := loadConfig()

	if config.CurrentServer == "" {
		if len(config.Servers) == 0 {
			return nil, constants.ErrNoServersConfigured
		}
		// If no current server set but servers exist, use the first one
		for name := range config.Servers {
			config.CurrentServer = name

			break
		}
	}

	serverConfig, exists := config.Servers[config.CurrentServer]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", constants.ErrCurrentServerGone, config.CurrentServer)
	}

	return serverConfig, nil
}

// getServerConfigByFlag returns server config based on command line flag or
// the current server.
func getServerConfigByFlag(serverFlag string) (*ServerConfig, error) {
	config := loadConfig()

	// If --server flag is provided, use that specific server
	if serverFlag != "" {
		// First check if it's a configured server name
		if serverConfig, exists := config.Servers[serverFlag]; exists {
			return serverConfig, nil
		}

		// Otherwise look for it by endpoint
		resolved := resolveServerEndpoint(serverFlag)
		for _, serverConfig := range config.Servers {
			if serverConfig.Endpoint == resolved {
				return serverConfig, nil
			}
		}

		return nil, fmt.Errorf("%w, use 'pbxapi servers list' to see available servers: '%s'", constants.ErrServerNotFound, serverFlag)
	}

	// Otherwise use current server
	return getCurrentServerConfig()
}

// findServerName finds the config key for a given server config.
func findServerName(serverConfig *ServerConfig, serverFlag string) (string, error) {
	config := loadConfig()

	if serverFlag != "" {
		if _, exists := config.Servers[serverFlag]; exists {
			return serverFlag, nil
		}
	}

	for name, cfg := range config.Servers {
		if cfg.Endpoint == serverConfig.Endpoint {
			return name, nil
		}
	}

	if config.CurrentServer != "" {
		return config.CurrentServer, nil
	}

	return "", fmt.Errorf("%w: '%s'", constants.ErrServerNotFound, serverFlag)
}

// resolveServerEndpoint resolves a configured server name to its endpoint,
// or returns the input unchanged when it is already an endpoint.
func resolveServerEndpoint(nameOrEndpoint string) string {
	config := loadConfig()

	if serverConfig, exists := config.Servers[nameOrEndpoint]; exists {
		return serverConfig.Endpoint
	}

	return nameOrEndpoint
}

// CreateClientWithServer creates a PBX client for the named server, or the
// current server when the flag is empty. Renewed sessions are persisted back
// to the config file.
func CreateClientWithServer(serverFlag string) (pbxapi.Client, error) {
	serverConfig, err := getServerConfigByFlag(serverFlag)
	if err != nil {
		return nil, err
	}

	if serverConfig.Endpoint == "" {
		return nil, constants.ErrNoServersConfigured
	}

	serverName, err := findServerName(serverConfig, serverFlag)
	if err != nil {
		return nil, err
	}

	tokenManager := createTokenManager(serverConfig, serverName)
	pbxConfig := buildPBXConfig(serverConfig)

	pbxClient, err := client.NewWithTokenManager(pbxConfig, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return pbxClient, nil
}

// createTokenManager builds the config-persisting token manager for a server.
func createTokenManager(serverConfig *ServerConfig, serverName string) auth.TokenManager {
	baseURL, err := client.NormalizeBaseURL(serverConfig.Endpoint, nil)
	if err != nil {
		baseURL = serverConfig.Endpoint
	}

	sessionConfig := &auth.SessionConfig{
		BaseURL:       baseURL,
		Username:      serverConfig.Username,
		AccessToken:   serverConfig.AccessToken,
		RefreshToken:  serverConfig.RefreshToken,
		SkipTLSVerify: serverConfig.SkipSSLValidation || viper.GetBool("skip_ssl_validation"),
	}

	return auth.NewConfigTokenManager(sessionConfig, NewConfigPersister(), serverName)
}

func buildPBXConfig(serverConfig *ServerConfig) *pbxapi.Config {
	config := &pbxapi.Config{
		BaseURL:       serverConfig.Endpoint,
		SkipTLSVerify: serverConfig.SkipSSLValidation || viper.GetBool("skip_ssl_validation"),
		Username:      serverConfig.Username,
		ReloadPath:    serverConfig.ReloadPath,
		ReloadMethod:  serverConfig.ReloadMethod,
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = verboseLogger()
	}

	return config
}

// verboseLogger builds the console logger behind the --verbose flag.
func verboseLogger() pbxapi.Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: viper.GetBool("no_color")}

	return pbxapi.NewZerologLogger(zerolog.New(writer).With().Timestamp().Logger())
}

// setGlobalConfig sets a global configuration value.
func setGlobalConfig(config *Config, key, value string) error {
	switch key {
	case "output":
		config.Output = value
	case "no_color":
		config.NoColor = value == "true" || value == "1"
	case "current_server":
		if _, exists := config.Servers[value]; !exists {
			return fmt.Errorf("%w: '%s'", constants.ErrServerNotFound, value)
		}

		config.CurrentServer = value
	default:
		return fmt.Errorf("%w: %s. Use --server flag for server-specific settings", constants.ErrUnknownConfigKey, key)
	}

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Set global %s\n", key)

	return nil
}

// setServerSpecificConfig sets configuration for a specific server.
func setServerSpecificConfig(config *Config, serverName, key, value string) error {
	serverConfig, exists := config.Servers[serverName]
	if !exists {
		return fmt.Errorf("%w, use 'pbxapi servers list' to see available servers: '%s'", constants.ErrServerNotFound, serverName)
	}

	switch key {
	case "username":
		serverConfig.Username = value
	case "skip_ssl_validation":
		serverConfig.SkipSSLValidation = value == "true" || value == "1"
	case "reload_path":
		serverConfig.ReloadPath = value
	case "reload_method":
		serverConfig.ReloadMethod = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	config.Servers[serverName] = serverConfig

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Set %s for server '%s'\n", key, serverName)

	return nil
}

// unsetGlobalConfig unsets a global configuration value.
func unsetGlobalConfig(config *Config, key string) error {
	switch key {
	case "output":
		config.Output = constants.FormatTable
	case "no_color":
		config.NoColor = false
	default:
		return fmt.Errorf("%w: %s. Use --server flag for server-specific settings", constants.ErrUnknownConfigKey, key)
	}

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Unset global %s\n", key)

	return nil
}

// unsetServerSpecificConfig unsets configuration for a specific server.
func unsetServerSpecificConfig(config *Config, serverName, key string) error {
	serverConfig, exists := config.Servers[serverName]
	if !exists {
		return fmt.Errorf("%w, use 'pbxapi servers list' to see available servers: '%s'", constants.ErrServerNotFound, serverName)
	}

	switch key {
	case "username":
		serverConfig.Username = ""
	case "skip_ssl_validation":
		serverConfig.SkipSSLValidation = false
	case "reload_path":
		serverConfig.ReloadPath = ""
	case "reload_method":
		serverConfig.ReloadMethod = ""
	case "access_token", "refresh_token":
		return constants.ErrTokenFieldUnset
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	config.Servers[serverName] = serverConfig

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Unset %s for server '%s'\n", key, serverName)

	return nil
}

// showServerSpecificConfig shows configuration for a specific server.
func showServerSpecificConfig(config *Config, serverName string) error {
	serverConfig, exists := config.Servers[serverName]
	if !exists {
		return fmt.Errorf("%w, use 'pbxapi servers list' to see available servers: '%s'", constants.ErrServerNotFound, serverName)
	}

	output := viper.GetString("output")
	switch output {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to encode server config as JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to encode server config as YAML: %w", err)
		}

		return nil
	default:
		return displayServerConfigTable(config, serverName, serverConfig)
	}
}

// clearServerSpecificConfig clears configuration for a specific server,
// keeping only the endpoint.
func clearServerSpecificConfig(config *Config, serverName string) error {
	serverConfig, exists := config.Servers[serverName]
	if !exists {
		return fmt.Errorf("%w, use 'pbxapi servers list' to see available servers: '%s'", constants.ErrServerNotFound, serverName)
	}

	serverConfig.Username = ""
	serverConfig.AccessToken = ""
	serverConfig.TokenExpiresAt = nil
	serverConfig.RefreshToken = ""
	serverConfig.LastRefreshed = nil
	serverConfig.SkipSSLValidation = false
	serverConfig.ReloadPath = ""
	serverConfig.ReloadMethod = ""

	config.Servers[serverName] = serverConfig

	err := saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Cleared configuration for server '%s'\n", serverName)

	return nil
}

// displayConfigTable displays configuration in a table format.
func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Output", config.Output})
	_ = table.Append([]string{"No Color", strconv.FormatBool(config.NoColor)})

	if config.CurrentServer != "" {
		_ = table.Append([]string{"Current Server", config.CurrentServer})
	}

	_, _ = os.Stdout.WriteString("Global Configuration:\n")

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return displayServersTable(config)
}

func displayServersTable(config *Config) error {
	if len(config.Servers) == 0 {
		_, _ = os.Stdout.WriteString("\nNo servers configured. Use 'pbxapi servers add' to add one.\n")

		return nil
	}

	_, _ = os.Stdout.WriteString("\nConfigured Servers:\n")

	serverTable := tablewriter.NewWriter(os.Stdout)
	serverTable.Header("Name", "Endpoint", "Username", "Current", "Skip SSL")

	for name, serverConfig := range config.Servers {
		current := ""
		if name == config.CurrentServer {
			current = "*"
		}

		_ = serverTable.Append([]string{
			name,
			serverConfig.Endpoint,
			formatConfigValue(serverConfig.Username),
			current,
			strconv.FormatBool(serverConfig.SkipSSLValidation),
		})
	}

	err := serverTable.Render()
	if err != nil {
		return fmt.Errorf("failed to render server config table: %w", err)
	}

	return nil
}

func displayServerConfigTable(config *Config, serverName string, serverConfig *ServerConfig) error {
	_, _ = fmt.Fprintf(os.Stdout, "Configuration for server '%s':\n", serverName)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Endpoint", serverConfig.Endpoint})
	_ = table.Append([]string{"Username", formatConfigValue(serverConfig.Username)})
	_ = table.Append([]string{"Access Token", maskToken(serverConfig.AccessToken)})
	_ = table.Append([]string{"Refresh Token Available", strconv.FormatBool(serverConfig.RefreshToken != "")})
	_ = table.Append([]string{"Skip SSL Validation", strconv.FormatBool(serverConfig.SkipSSLValidation)})
	_ = table.Append([]string{"Current", strconv.FormatBool(serverName == config.CurrentServer)})

	if serverConfig.TokenExpiresAt != nil {
		_ = table.Append([]string{"Token Expires At", serverConfig.TokenExpiresAt.Format(time.RFC3339)})
	}

	if serverConfig.ReloadPath != "" {
		_ = table.Append([]string{"Reload Path", serverConfig.ReloadPath})
	}

	if serverConfig.ReloadMethod != "" {
		_ = table.Append([]string{"Reload Method", serverConfig.ReloadMethod})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render server config table: %w", err)
	}

	return nil
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

// maskToken keeps a short preview of the token and masks the rest.
func maskToken(token string) string {
	if token == "" {
		return "-"
	}

	if len(token) <= constants.TokenPreviewLength {
		return constants.MaskedSecret
	}

	return token[:constants.TokenPreviewLength] + constants.MaskedSecret
}
