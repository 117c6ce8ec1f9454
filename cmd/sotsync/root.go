package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sotsync/internal/adapters/filesystem"
	"github.com/felixgeelhaar/sotsync/internal/adapters/logging"
	"github.com/felixgeelhaar/sotsync/internal/adapters/sotfile"
	"github.com/felixgeelhaar/sotsync/internal/app"
	"github.com/felixgeelhaar/sotsync/internal/domain/config"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "sotsync",
	Short: "Reconcile device configuration against a source of truth",
	Long: `sotsync turns a device's running configuration plus the desired state held
in a source of truth into the ordered commands that converge the device.

Platform behaviour is provided by registered parsers and hooks:
  Parse → Preprocess → Reconcile → Postprocess → Execute`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and prints any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printErrorTo(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default: "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides settings")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// runtimeOptions holds what every command needs to build an App.
type runtimeOptions struct {
	configPath string
	inventory  string
	logLevel   string
	logJSON    bool
	verbose    bool
	stderr     io.Writer
	fs         ports.FileSystem
	executor   ports.CommandExecutor
}

func globalOptions(cmd *cobra.Command) runtimeOptions {
	return runtimeOptions{
		configPath: cfgFile,
		logLevel:   logLevel,
		logJSON:    logJSON,
		verbose:    verbose,
		stderr:     cmd.ErrOrStderr(),
		fs:         filesystem.NewRealFileSystem(),
	}
}

// newApp loads settings, the logger and the inventory, then builds the App.
func newApp(opts runtimeOptions) (*app.App, *config.Settings, error) {
	path, required := opts.configPath, true
	if path == "" {
		path, required = config.DefaultPath, false
	}
	settings, err := config.NewLoader(opts.fs).Load(path, required)
	if err != nil {
		return nil, nil, err
	}

	level := settings.Log.Level
	switch {
	case opts.logLevel != "":
		level = opts.logLevel
	case opts.verbose:
		level = "debug"
	}
	logger, err := logging.New(level, opts.logJSON || settings.Log.JSON, opts.stderr)
	if err != nil {
		return nil, nil, config.NewUserError(config.ErrCodeConfigInvalid, err.Error()).
			WithSuggestion("Use one of debug, info, warn or error.")
	}

	appOpts := []app.Option{
		app.WithFileSystem(opts.fs),
		app.WithLogger(logger),
	}
	if opts.inventory != "" {
		inv, err := sotfile.Load(opts.fs, opts.inventory)
		if err != nil {
			return nil, nil, err
		}
		appOpts = append(appOpts, app.WithSourceOfTruth(inv))
	}
	if opts.executor != nil {
		appOpts = append(appOpts, app.WithExecutor(opts.executor))
	}

	a, err := app.New(settings, appOpts...)
	if err != nil {
		return nil, nil, err
	}
	return a, settings, nil
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	// Complete --config with YAML files
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"debug\tStage transitions and per-section counts",
			"info\tOne line per device",
			"warn\tSkipped configuration lines",
			"error\tFailed entities and devices",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
