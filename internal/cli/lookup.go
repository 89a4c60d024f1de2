package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"geosearch/internal/domain"
	"geosearch/internal/ui/dispatch"
)

// NewLookupCmd creates the lookup command
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <query>",
		Short: "Search once and print the results",
		Long: `Send a single query to the geocoder and print what it returns, without
opening the interactive form.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLookup,
	}

	cmd.Flags().Bool("json", false, "Print results as a JSON array")

	return cmd
}

func runLookup(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if utf8.RuneCountInString(strings.TrimSpace(query)) < dispatch.MinQueryLength {
		return fmt.Errorf("query must be at least %d characters", dispatch.MinQueryLength)
	}

	app, err := NewApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = app.Context(ctx)

	results, err := app.Searcher().Search(ctx, query)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}
	return writeTable(cmd.OutOrStdout(), results)
}

func writeJSON(out io.Writer, results []domain.Location) error {
	raw := make([]json.RawMessage, 0, len(results))
	for _, loc := range results {
		if len(loc.Raw) > 0 {
			raw = append(raw, loc.Raw)
			continue
		}
		data, err := json.Marshal(loc)
		if err != nil {
			return fmt.Errorf("failed to encode location: %w", err)
		}
		raw = append(raw, data)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}

func writeTable(out io.Writer, results []domain.Location) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(out, "No locations found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLACE ID\tKIND\tLAT\tLON\tNAME")
	fmt.Fprintln(w, "--------\t----\t---\t---\t----")
	for _, loc := range results {
		kind := loc.Kind()
		if loc.Type != "" {
			kind = strings.TrimPrefix(kind+"/"+loc.Type, "/")
		}
		if kind == "" {
			kind = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", loc.PlaceID, kind, loc.Lat, loc.Lon, loc.Label())
	}
	return w.Flush()
}
