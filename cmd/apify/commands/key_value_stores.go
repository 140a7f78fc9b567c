package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// NewKeyValueStoresCommand creates the key-value stores command group.
func NewKeyValueStoresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kvs",
		Aliases: []string{"key-value-stores", "store"},
		Short:   "Manage key-value stores",
		Long: `Inspect and manage key-value stores and their records.

STORE is either a 17 character ID or a USERNAME/NAME pair.`,
	}

	cmd.AddCommand(newKVSGetCommand())
	cmd.AddCommand(newKVSCreateCommand())
	cmd.AddCommand(newKVSDeleteCommand())
	cmd.AddCommand(newKVSListCommand())
	cmd.AddCommand(newKVSKeysCommand())
	cmd.AddCommand(newKVSGetRecordCommand())
	cmd.AddCommand(newKVSSetRecordCommand())
	cmd.AddCommand(newKVSDeleteRecordCommand())

	return cmd
}

func newKVSGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get STORE",
		Short: "Get key-value store details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			store, err := client.KeyValueStores().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get key-value store: %w", err)
			}

			return render(cmd, store, renderStoreTable)
		},
	}
}

func newKVSCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a named key-value store",
		Long:  "Create a named key-value store, or return the existing one with that name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			store, err := client.KeyValueStores().GetOrCreate(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create key-value store: %w", err)
			}

			return render(cmd, store, renderStoreTable)
		},
	}
}

func renderStoreTable(w io.Writer, store *apify.KeyValueStore) error {
	return propertyTable(w, [][]string{
		{"ID", store.ID},
		{"Name", formatOptional(store.Name)},
		{"User ID", store.UserID},
		{"Created", formatTime(store.CreatedAt)},
		{"Modified", formatTime(store.ModifiedAt)},
		{"Accessed", formatTime(store.AccessedAt)},
		{"Run ID", formatOptional(store.ActRunID)},
	})
}

func newKVSDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete STORE",
		Short: "Delete a key-value store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirm(cmd, force, fmt.Sprintf("Really delete key-value store %s?", args[0]))
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			_, err = client.KeyValueStores().Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete key-value store: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Key-value store %s deleted\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

func newKVSListCommand() *cobra.Command {
	var (
		offset, limit uint64
		desc          bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List key-value stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			page, err := client.KeyValueStores().List(cmd.Context(),
				apify.NewListParams().WithOffset(offset).WithLimit(limit).WithDesc(desc))
			if err != nil {
				return fmt.Errorf("failed to list key-value stores: %w", err)
			}

			return render(cmd, page, func(w io.Writer, page *apify.PaginationList[apify.KeyValueStore]) error {
				rows := make([][]string, 0, len(page.Items))
				for _, store := range page.Items {
					rows = append(rows, []string{store.ID, formatOptional(store.Name), formatTime(store.ModifiedAt)})
				}

				err := listTable(w, []string{"ID", "Name", "Modified"}, rows)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(w, pageSummary(page.Offset, page.Count, page.Total))

				return nil
			})
		},
	}

	addListFlags(cmd, &offset, &limit, &desc)

	return cmd
}

func newKVSKeysCommand() *cobra.Command {
	var (
		limit    uint64
		startKey string
	)

	cmd := &cobra.Command{
		Use:   "keys STORE",
		Short: "List record keys",
		Long:  "List record keys of a key-value store. Continue with --start-key from the previous page.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := &apify.ListKeysParams{Limit: &limit}
			if startKey != "" {
				params.ExclusiveStartKey = &startKey
			}

			keys, err := client.KeyValueStores().ListKeys(cmd.Context(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to list keys: %w", err)
			}

			return render(cmd, keys, func(w io.Writer, keys *apify.KeyValueStoreKeys) error {
				rows := make([][]string, 0, len(keys.Items))
				for _, key := range keys.Items {
					rows = append(rows, []string{key.Key, formatUint(key.Size)})
				}

				err := listTable(w, []string{"Key", "Size"}, rows)
				if err != nil {
					return err
				}

				if keys.IsTruncated && keys.NextExclusiveStartKey != nil {
					_, _ = fmt.Fprintf(w, "More keys available, continue with --start-key %s\n", *keys.NextExclusiveStartKey)
				}

				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&limit, "limit", constants.DefaultPageSize, "maximum number of keys")
	cmd.Flags().StringVar(&startKey, "start-key", "", "list keys after this one")

	return cmd
}

func newKVSGetRecordCommand() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "get-record STORE KEY",
		Short: "Print a record value",
		Long:  "Write the raw record value to stdout or --output-file",
		Args:  cobra.ExactArgs(2), //nolint:mnd // store and key
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			record, err := client.KeyValueStores().GetRecord(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to get record: %w", err)
			}

			return writeOutput(cmd, outputFile, record.Value)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output-file", "O", "", "write to file instead of stdout")

	return cmd
}

func newKVSSetRecordCommand() *cobra.Command {
	var (
		value       string
		file        string
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "set-record STORE KEY",
		Short: "Store a record",
		Long: `Store a record from --value or --file ("-" reads stdin).

Values given with --value are stored as text/plain and files as
application/json unless --content-type says otherwise.`,
		Args: cobra.ExactArgs(2), //nolint:mnd // store and key
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := recordValue(cmd, value, file)
			if err != nil {
				return err
			}

			if contentType == "" && cmd.Flags().Changed("value") {
				contentType = constants.ContentTypeText
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			_, err = client.KeyValueStores().SetRecord(cmd.Context(), args[0], &apify.Record{
				Key:         args[1],
				Value:       data,
				ContentType: contentType,
			})
			if err != nil {
				return fmt.Errorf("failed to set record: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Record %s stored (%d bytes)\n", args[1], len(data))

			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "record value")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the value from a file")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type of the value")

	return cmd
}

func recordValue(cmd *cobra.Command, value, file string) ([]byte, error) {
	valueSet := cmd.Flags().Changed("value")

	switch {
	case valueSet && file != "":
		return nil, ErrConflictingInput
	case valueSet:
		return []byte(value), nil
	case file != "":
		return readInput(cmd, file)
	default:
		return nil, constants.ErrRecordValueNeeded
	}
}

func newKVSDeleteRecordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-record STORE KEY",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2), //nolint:mnd // store and key
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			_, err = client.KeyValueStores().DeleteRecord(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to delete record: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Record %s deleted\n", args[1])

			return nil
		},
	}
}
