package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "get RESOURCE ID",
		Short: "Get a single record",
		Long:  "Fetch one record of a PBX resource by its id, e.g. 'pbxapi get extensions 1001'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			doc, err := client.Get(context.Background(), args[0], args[1], fieldsParams(fields))
			if err != nil {
				return err
			}

			return renderDocument(doc)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict returned fields (comma-separated)")

	return cmd
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "list RESOURCE",
		Short: "List records of a resource",
		Long:  "List all records of a PBX resource, e.g. 'pbxapi list extensions'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			doc, err := client.List(context.Background(), args[0], fieldsParams(fields))
			if err != nil {
				return err
			}

			return renderDocument(doc)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict returned fields (comma-separated)")

	return cmd
}

// NewCreateCommand creates the create command
func NewCreateCommand() *cobra.Command {
	var (
		dataPairs []string
		filePath  string
		noReload  bool
	)

	cmd := &cobra.Command{
		Use:   "create RESOURCE",
		Short: "Create a record",
		Long: `Create a record of a PBX resource.

The payload comes from repeated --data key=value flags or from a JSON file
via --file (use '-' for stdin). The PBX configuration is reloaded after the
create unless --no-reload is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(dataPairs, filePath)
			if err != nil {
				return err
			}

			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			doc, err := client.Create(context.Background(), args[0], data, reloadOptions(noReload))
			if err != nil {
				return reportMutation(doc, err)
			}

			return renderDocument(doc)
		},
	}

	cmd.Flags().StringArrayVarP(&dataPairs, "data", "d", nil, "record field as key=value (repeatable)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "JSON file with the record payload ('-' for stdin)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "skip the configuration reload after the change")

	return cmd
}

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	var (
		dataPairs []string
		filePath  string
		noReload  bool
	)

	cmd := &cobra.Command{
		Use:   "update RESOURCE ID",
		Short: "Update a record",
		Long: `Update a record of a PBX resource.

The payload comes from repeated --data key=value flags or from a JSON file
via --file (use '-' for stdin). The PBX configuration is reloaded after the
update unless --no-reload is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(dataPairs, filePath)
			if err != nil {
				return err
			}

			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			doc, err := client.Update(context.Background(), args[0], args[1], data, reloadOptions(noReload))
			if err != nil {
				return reportMutation(doc, err)
			}

			return renderDocument(doc)
		},
	}

	cmd.Flags().StringArrayVarP(&dataPairs, "data", "d", nil, "record field as key=value (repeatable)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "JSON file with the record payload ('-' for stdin)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "skip the configuration reload after the change")

	return cmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var noReload bool

	cmd := &cobra.Command{
		Use:   "delete RESOURCE ID [ID...]",
		Short: "Delete records",
		Long: `Delete one or more records of a PBX resource by id.

Multiple ids are deleted in a single request. The PBX configuration is
reloaded after the delete unless --no-reload is given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			doc, err := client.Delete(context.Background(), args[0], args[1:], reloadOptions(noReload))
			if err != nil {
				return reportMutation(doc, err)
			}

			return renderDocument(doc)
		},
	}

	cmd.Flags().BoolVar(&noReload, "no-reload", false, "skip the configuration reload after the change")

	return cmd
}

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "search RESOURCE TERM",
		Short: "Search records of a resource",
		Long:  "Search a PBX resource for records matching a term, e.g. 'pbxapi search extensions 1001'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			doc, err := client.Search(context.Background(), args[0], args[1], fieldsParams(fields))
			if err != nil {
				return err
			}

			return renderDocument(doc)
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict returned fields (comma-separated)")

	return cmd
}

// NewResourcesCommand creates the resources command listing known resource
// types.
func NewResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List known PBX resource types",
		Long:  "Display the PBX resource types this client knows about. Other types still work when the PBX serves them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			resources := pbxapi.KnownResources()

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				return renderJSON(resources)
			case constants.FormatYAML:
				return renderYAML(resources)
			default:
				for _, resource := range resources {
					fmt.Println(resource)
				}

				return nil
			}
		},
	}
}

// NewCallCommand creates the call command for dynamic operation names.
func NewCallCommand() *cobra.Command {
	var (
		id        string
		fields    []string
		dataPairs []string
		filePath  string
		noReload  bool
	)

	cmd := &cobra.Command{
		Use:   "call OPERATION",
		Short: "Invoke a dynamic operation",
		Long: `Invoke an operation by its verb_resource name, e.g. 'call get_extensions'
or 'call delete_queues --id 500'. Verbs are get, create, update, and delete;
the resource part is taken verbatim.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			operation, err := pbxapi.ParseOperation(args[0])
			if err != nil {
				return err
			}

			call := pbxapi.Call{
				ID:     id,
				Fields: fields,
			}

			if noReload {
				call.Reload = pbxapi.Bool(false)
			}

			if len(dataPairs) > 0 || filePath != "" {
				data, err := readPayload(dataPairs, filePath)
				if err != nil {
					return err
				}

				call.Data = data
			}

			client, err := CreateClientWithServer(viper.GetString("server"))
			if err != nil {
				return err
			}

			doc, err := client.Do(context.Background(), operation, call)
			if err != nil {
				return reportMutation(doc, err)
			}

			return renderDocument(doc)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "record id for get, update, and delete operations")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "restrict returned fields (comma-separated)")
	cmd.Flags().StringArrayVarP(&dataPairs, "data", "d", nil, "record field as key=value (repeatable)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "JSON file with the record payload ('-' for stdin)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "skip the configuration reload after the change")

	return cmd
}

// fieldsParams builds query params from a --fields flag value.
func fieldsParams(fields []string) *pbxapi.QueryParams {
	if len(fields) == 0 {
		return nil
	}

	return pbxapi.NewQueryParams().WithFields(fields...)
}

// reportMutation surfaces a mutation result whose reload failed: the change
// itself was applied, so the document is rendered before the error is
// returned.
func reportMutation(doc *pbxapi.Document, err error) error {
	if doc != nil {
		_, _ = fmt.Fprintln(os.Stdout, "The change was applied, but the follow-up reload failed:")

		if renderErr := renderDocument(doc); renderErr != nil {
			return renderErr
		}
	}

	return err
}
