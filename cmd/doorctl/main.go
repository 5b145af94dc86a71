// doorctl inspects a scene stage offline: it lists the rooms and doors the
// service would discover, explains door classification, shows the lighting
// associated with each room, simulates door animations frame by frame and
// issues API tokens.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-interaction/internal/core"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
var version = "dev"

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	stageFile  string
	logLevel   string
	asJSON     bool
}

func main() {
	root := newRootCmd()
	root.SetOut(os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "doorctl",
		Short: "Inspect and simulate doors in a scene stage",
		Long: `doorctl loads the stage the interaction service would load and runs
door discovery, classification and animation against it without any broker,
database or API server.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", os.Getenv("GRAYLOGIC_CONFIG"), "configuration file (defaults when empty)")
	flags.StringVarP(&opts.stageFile, "stage", "s", "", "stage file, overriding stage.file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	flags.BoolVar(&opts.asJSON, "json", false, "output JSON")

	root.AddCommand(
		newScanCmd(opts),
		newClassifyCmd(opts),
		newLightsCmd(opts),
		newSimulateCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("doorctl version %s\n", version)
		},
	}
}

// loadConfig reads the configuration file, or the built-in defaults when
// none is given, and applies the --stage override.
func (o *options) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.stageFile != "" {
		cfg.Stage.File = o.stageFile
	}
	return cfg, nil
}

// loadCore loads the stage and builds the door inventory. Logs go to the
// command's stderr so stdout carries only results.
func (o *options) loadCore(cmd *cobra.Command) (*core.Core, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logCfg := cfg.Logging
	logCfg.Level = o.logLevel
	logCfg.Format = "text"
	log := logging.NewWithWriter(logCfg, version, cmd.ErrOrStderr())

	c, err := core.Load(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
