// Command planetgen generates procedural planet meshes, exports them and
// serves them to browser renderers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"planetgenerator/config"
	"planetgenerator/logging"
)

// app carries what PersistentPreRunE prepares for every subcommand.
type app struct {
	configPath string
	verbose    bool

	settings *config.Settings
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "planetgen",
		Short: "Deterministic procedural planet generator",
		Long: `planetgen turns a seed and a handful of numeric parameters into a
triangle mesh of a planet with continents, oceans and mountains, colored per
vertex by biome. The same parameters always produce the same mesh.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Settings file (YAML or JSON)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.generateCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(a.probeCmd())
	root.AddCommand(a.configCmd())
	return root
}

// setup loads settings and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.settings = s

	ls := s.Logging
	if a.verbose {
		ls = ls.Verbose()
	}
	a.logger, err = logging.New(ls)
	if err != nil {
		return err
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
