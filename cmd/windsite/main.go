package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "windsite",
		Short: "Wind turbine siting and assessment engine",
	}

	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(windgridCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func optimizeCmd() *cobra.Command {
	var asJSON, offline bool

	cmd := &cobra.Command{
		Use:   "optimize [scenario-path]",
		Short: "Place turbines inside a scenario boundary and rank the sites",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runOptimize(args[0], asJSON, offline)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full result as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the wind and obstacle fetches")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario-path]",
		Short: "Validate a scenario without running the optimizer",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func windgridCmd() *cobra.Command {
	var rows, cols int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "windgrid [scenario-path]",
		Short: "Fetch and summarize the wind field over a scenario boundary",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runWindGrid(args[0], rows, cols, asJSON)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "grid rows (0 for the default)")
	cmd.Flags().IntVar(&cols, "cols", 0, "grid columns (0 for the default)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the surface as JSON")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var lat, lon float64
	var seed int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Generate a feasibility study for a coordinate",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runAnalyze(lat, lon, seed, asJSON)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the site")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude of the site")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the assessment as JSON")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (0 uses the configured port)")
	return cmd
}
