package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// Output formats.
const (
	OutputFormatJSON  = constants.FormatJSON
	OutputFormatYAML  = constants.FormatYAML
	OutputFormatTable = "table"

	timeLayout     = "2006-01-02 15:04:05"
	maxCellWidth   = 80
	truncateSuffix = "..."
)

// Common static errors used throughout the commands package.
var (
	ErrAborted          = errors.New("aborted")
	ErrEmptyInput       = errors.New("no items in input")
	ErrConflictingInput = errors.New("--value and --file are mutually exclusive")
)

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderJSON  func(w io.Writer, data T) error
	RenderYAML  func(w io.Writer, data T) error
	RenderTable func(w io.Writer, data T) error
}

// Render outputs data in the specified format.
func (o *OutputRenderer[T]) Render(w io.Writer, data T, format string) error {
	switch format {
	case OutputFormatJSON:
		return o.RenderJSON(w, data)
	case OutputFormatYAML:
		return o.RenderYAML(w, data)
	case OutputFormatTable, "":
		return o.RenderTable(w, data)
	default:
		return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, format)
	}
}

// newRenderer wires the standard encoders around a table renderer.
func newRenderer[T any](table func(w io.Writer, data T) error) *OutputRenderer[T] {
	return &OutputRenderer[T]{
		RenderJSON:  StandardJSONRenderer[T],
		RenderYAML:  StandardYAMLRenderer[T],
		RenderTable: table,
	}
}

// render writes data to the command output in the format selected by --output.
func render[T any](cmd *cobra.Command, data T, table func(w io.Writer, data T) error) error {
	return newRenderer(table).Render(cmd.OutOrStdout(), data, viper.GetString("output"))
}

// StandardJSONRenderer writes indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// propertyTable renders key/value rows.
func propertyTable(w io.Writer, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// listTable renders a header and rows.
func listTable(w io.Writer, header []string, rows [][]string) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}

	table := tablewriter.NewWriter(w)
	table.Header(cells...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format(timeLayout)
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return constants.NotAvailable
	}

	return formatTime(*t)
}

func formatOptional(s *string) string {
	if s == nil || *s == "" {
		return constants.NotAvailable
	}

	return *s
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func formatLimit(limit *uint64) string {
	if limit == nil {
		return constants.NotAvailable
	}

	return formatUint(*limit)
}

func truncate(s string) string {
	if len(s) <= maxCellWidth {
		return s
	}

	return s[:maxCellWidth-len(truncateSuffix)] + truncateSuffix
}

// pageSummary describes the window a page covers, e.g. "Showing 11-20 of 135".
func pageSummary(offset, count, total uint64) string {
	if count == 0 {
		return fmt.Sprintf("Showing 0 of %d", total)
	}

	return fmt.Sprintf("Showing %d-%d of %d", offset+1, offset+count, total)
}

// readInput reads path, or stdin when path is empty or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", constants.ErrReadingInput, err)
		}

		return data, nil
	}

	// #nosec G304 -- the path is supplied by the operator on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrReadingInput, err)
	}

	return data, nil
}

// writeOutput writes data to path, or to the command output when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)

		return err
	}

	err := os.WriteFile(path, data, constants.OutputFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bytes to %s\n", len(data), path)

	return nil
}

// decodeDocument parses JSON, falling back to YAML so hand-written input files work too.
func decodeDocument(data []byte) (interface{}, error) {
	var doc interface{}

	jsonErr := json.Unmarshal(data, &doc)
	if jsonErr == nil {
		return doc, nil
	}

	yamlErr := yaml.Unmarshal(data, &doc)
	if yamlErr != nil {
		return nil, &apify.ParseError{Err: jsonErr}
	}

	return doc, nil
}

// confirm asks a yes/no question unless force is set.
func confirm(cmd *cobra.Command, force bool, question string) error {
	if force {
		return nil
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	var answer string

	_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "y" && answer != "yes" {
		return ErrAborted
	}

	return nil
}

func addListFlags(cmd *cobra.Command, offset, limit *uint64, desc *bool) {
	cmd.Flags().Uint64Var(offset, "offset", 0, "number of entries to skip")
	cmd.Flags().Uint64Var(limit, "limit", constants.DefaultPageSize, "maximum number of entries to return")
	cmd.Flags().BoolVar(desc, "desc", false, "newest entries first")
}
