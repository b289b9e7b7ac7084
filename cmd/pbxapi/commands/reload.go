package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewReloadCommand creates the reload command
func NewReloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload [RESOURCE]",
		Short: "Reload the PBX configuration",
		Long: `Ask the PBX to apply pending configuration changes to the running
telephony engine. The optional RESOURCE argument fills the {resource}
placeholder when the server's reload path carries one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			resource := ""
			if len(args) > 0 {
				resource = args[0]
			}

			doc, err := client.Reload(context.Background(), resource)
			if err != nil {
				return err
			}

			return renderDocument(doc)
		},
	}

	return cmd
}
