package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for geosearch
func NewRootCmd(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "geosearch",
		Short: "Pick a location from OpenStreetMap in the terminal",
		Long: `geosearch opens a small form with a location search field backed by
the Nominatim geocoder. Type at least three characters, pick a result with
the arrow keys or the mouse, and the chosen place is printed as JSON on exit.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := NewApp(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			defer func() {
				if closeErr := app.Close(); closeErr != nil {
					fmt.Fprintf(os.Stderr, "Warning: %v\n", closeErr)
				}
			}()
			return runInteractive(cmd.Context(), app, cmd.OutOrStdout())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to the configuration file")
	flags.String("endpoint", "", "Nominatim search endpoint")
	flags.String("lang", "", "Preferred result language (accept-language)")
	flags.String("debounce", "", "Quiet period before searching, e.g. 300ms")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	flags.String("log-file", "", "Write logs to this file")
	flags.Bool("no-mouse", false, "Disable mouse support")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "geosearch %s\n", version)
			fmt.Fprintf(out, "commit: %s\n", commit)
			fmt.Fprintf(out, "built: %s\n", buildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(NewLookupCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute(version, commit, buildDate string) {
	if err := NewRootCmd(version, commit, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
