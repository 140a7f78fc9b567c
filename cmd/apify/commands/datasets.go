package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// NewDatasetsCommand creates the datasets command group.
func NewDatasetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasets",
		Aliases: []string{"dataset", "ds"},
		Short:   "Manage datasets",
		Long: `Inspect and manage Apify datasets and their items.

DATASET is either a 17 character ID or a USERNAME/NAME pair.`,
	}

	cmd.AddCommand(newDatasetsGetCommand())
	cmd.AddCommand(newDatasetsCreateCommand())
	cmd.AddCommand(newDatasetsUpdateCommand())
	cmd.AddCommand(newDatasetsDeleteCommand())
	cmd.AddCommand(newDatasetsListCommand())
	cmd.AddCommand(newDatasetsItemsCommand())
	cmd.AddCommand(newDatasetsPushCommand())
	cmd.AddCommand(newDatasetsDownloadCommand())

	return cmd
}

func newDatasetsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get DATASET",
		Short: "Get dataset details",
		Long:  "Display detailed information about a specific dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			dataset, err := client.Datasets().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get dataset: %w", err)
			}

			return render(cmd, dataset, renderDatasetTable)
		},
	}
}

func newDatasetsCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a named dataset",
		Long:  "Create a named dataset, or return the existing one with that name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			dataset, err := client.Datasets().GetOrCreate(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create dataset: %w", err)
			}

			return render(cmd, dataset, renderDatasetTable)
		},
	}
}

func newDatasetsUpdateCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update DATASET",
		Short: "Update a dataset",
		Long:  "Rename a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			dataset, err := client.Datasets().Update(cmd.Context(), args[0], &apify.DatasetUpdateRequest{Name: name})
			if err != nil {
				return fmt.Errorf("failed to update dataset: %w", err)
			}

			return render(cmd, dataset, renderDatasetTable)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new dataset name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newDatasetsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete DATASET",
		Short: "Delete a dataset",
		Long:  "Delete a dataset and all of its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirm(cmd, force, fmt.Sprintf("Really delete dataset %s?", args[0]))
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			_, err = client.Datasets().Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete dataset: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dataset %s deleted\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

func newDatasetsListCommand() *cobra.Command {
	var (
		offset, limit uint64
		desc, unnamed bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Long:  "List datasets of the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := apify.NewListParams().WithOffset(offset).WithLimit(limit).WithDesc(desc)
			if unnamed {
				params.Unnamed = &unnamed
			}

			page, err := client.Datasets().List(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to list datasets: %w", err)
			}

			return render(cmd, page, func(w io.Writer, page *apify.PaginationList[apify.Dataset]) error {
				rows := make([][]string, 0, len(page.Items))
				for _, dataset := range page.Items {
					rows = append(rows, []string{
						dataset.ID,
						formatOptional(dataset.Name),
						formatUint(dataset.ItemCount),
						formatTime(dataset.ModifiedAt),
					})
				}

				err := listTable(w, []string{"ID", "Name", "Items", "Modified"}, rows)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintln(w, pageSummary(page.Offset, page.Count, page.Total))

				return nil
			})
		},
	}

	addListFlags(cmd, &offset, &limit, &desc)
	cmd.Flags().BoolVar(&unnamed, "unnamed", false, "include unnamed datasets")

	return cmd
}

func newDatasetsItemsCommand() *cobra.Command {
	var (
		offset, limit uint64
		desc, clean   bool
		fields, omit  []string
		unwind        string
	)

	cmd := &cobra.Command{
		Use:   "items DATASET",
		Short: "List dataset items",
		Long:  "Fetch one page of items from a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := apify.NewListItemsParams().WithOffset(offset).WithLimit(limit).WithDesc(desc).
				WithFields(fields...).WithOmit(omit...)
			if clean {
				params.WithClean(true)
			}

			if unwind != "" {
				params.WithUnwind(unwind)
			}

			page, err := client.Datasets().ListItems(cmd.Context(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to list dataset items: %w", err)
			}

			return render(cmd, page, renderItemsTable)
		},
	}

	addListFlags(cmd, &offset, &limit, &desc)
	cmd.Flags().BoolVar(&clean, "clean", false, "skip empty items and hidden fields")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "only include these fields")
	cmd.Flags().StringSliceVar(&omit, "omit", nil, "exclude these fields")
	cmd.Flags().StringVar(&unwind, "unwind", "", "unwind items by this array field")

	return cmd
}

func newDatasetsPushCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "push DATASET",
		Short: "Push items to a dataset",
		Long: `Append items to a dataset.

Items are read from --file or stdin as a JSON (or YAML) object or array of objects.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			items, err := decodeDocument(data)
			if err != nil {
				return fmt.Errorf("failed to parse items: %w", err)
			}

			count := 1
			if list, ok := items.([]interface{}); ok {
				count = len(list)
			}

			if items == nil || count == 0 {
				return ErrEmptyInput
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			_, err = client.Datasets().PushItems(cmd.Context(), args[0], items)
			if err != nil {
				return fmt.Errorf("failed to push items: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d item(s) to %s\n", count, args[0])

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file with items (default stdin)")

	return cmd
}

func newDatasetsDownloadCommand() *cobra.Command {
	var (
		format        string
		outputFile    string
		offset, limit uint64
		fields        []string
	)

	cmd := &cobra.Command{
		Use:   "download DATASET",
		Short: "Export dataset items",
		Long:  "Download dataset items in json, jsonl, xml, html, csv, xlsx or rss format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			downloadFormat, err := apify.ParseDownloadFormat(format)
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := apify.NewListItemsParams().WithFields(fields...)
			if cmd.Flags().Changed("offset") {
				params.WithOffset(offset)
			}

			if cmd.Flags().Changed("limit") {
				params.WithLimit(limit)
			}

			data, err := client.Datasets().DownloadItems(cmd.Context(), args[0], downloadFormat, params)
			if err != nil {
				return fmt.Errorf("failed to download dataset items: %w", err)
			}

			return writeOutput(cmd, outputFile, data)
		},
	}

	cmd.Flags().StringVar(&format, "format", string(apify.FormatJSON), "export format")
	cmd.Flags().StringVarP(&outputFile, "output-file", "O", "", "write to file instead of stdout")
	cmd.Flags().Uint64Var(&offset, "offset", 0, "number of items to skip")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "maximum number of items")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "only include these fields")

	return cmd
}

func renderDatasetTable(w io.Writer, dataset *apify.Dataset) error {
	rows := [][]string{
		{"ID", dataset.ID},
		{"Name", formatOptional(dataset.Name)},
		{"User ID", dataset.UserID},
		{"Items", formatUint(dataset.ItemCount)},
		{"Created", formatTime(dataset.CreatedAt)},
		{"Modified", formatTime(dataset.ModifiedAt)},
		{"Accessed", formatTime(dataset.AccessedAt)},
	}

	if dataset.CleanItemCount != nil {
		rows = append(rows, []string{"Clean Items", formatUint(*dataset.CleanItemCount)})
	}

	if dataset.ActRunID != nil {
		rows = append(rows, []string{"Run ID", *dataset.ActRunID})
	}

	return propertyTable(w, rows)
}

func renderItemsTable(w io.Writer, page *apify.PaginationList[json.RawMessage]) error {
	rows := make([][]string, 0, len(page.Items))
	for i, item := range page.Items {
		rows = append(rows, []string{
			strconv.FormatUint(page.Offset+uint64(i), 10),
			truncate(string(item)),
		})
	}

	err := listTable(w, []string{"#", "Item"}, rows)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "%s (limit %s)\n", pageSummary(page.Offset, page.Count, page.Total), formatLimit(page.Limit))

	return nil
}
