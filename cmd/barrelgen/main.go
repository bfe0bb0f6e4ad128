package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"barrelgen/internal/barrel"
	"barrelgen/internal/classify"
	"barrelgen/internal/logging"
)

// newRootCmd builds the CLI. Flag state lives on the returned command, so
// each invocation (and each test) starts clean.
func newRootCmd() *cobra.Command {
	var (
		recursive bool
		wildcard  bool
		noSubdirs bool
		watchMode bool
		dryRun    bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "barrelgen [directory] [output-file]",
		Short: "Generate barrel files that re-export a directory's modules",
		Long: `barrelgen scans a directory of JavaScript/TypeScript sources, classifies
each module's exports (named values, types, default), and writes a barrel
file re-exporting them.

By default exports are re-exported by name; --wildcard switches to blanket
'export * from' statements. With --recursive, subdirectories are processed
leaf-first so each parent barrel can re-export its children's barrels.

Each directory may carry a .barrelrc.json sidecar with an "exclude" list of
glob patterns (* and ? wildcards) applied to file and directory names.`,
		Version:       "1.2.0",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(verbose)
			defer func() { _ = logger.Sync() }()

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			outputFile := barrel.DefaultOutputFile
			if len(args) > 1 {
				outputFile = args[1]
			}

			orch := barrel.New(afero.NewOsFs(), classify.DefaultRegistry(), logger, barrel.Options{
				OutputFile: outputFile,
				Recursive:  recursive,
				Wildcard:   wildcard,
				NoSubdirs:  noSubdirs,
				DryRun:     dryRun,
				Stdout:     cmd.OutOrStdout(),
			})

			count, err := orch.Process(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d re-export sources\n", outputFile, count)

			if !watchMode {
				return nil
			}
			return watch(dir, orch, logger)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Process subdirectories leaf-first")
	cmd.Flags().BoolVarP(&wildcard, "wildcard", "w", false, "Emit 'export * from' instead of named re-exports")
	cmd.Flags().BoolVarP(&noSubdirs, "no-subdirs", "S", false, "Do not include or recurse into subdirectories")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "Keep running and regenerate on source changes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print barrels to stdout instead of writing them")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// watch blocks until interrupted, regenerating barrels as sources change.
func watch(dir string, orch *barrel.Orchestrator, logger *zap.Logger) error {
	w, err := barrel.NewWatcher(dir, orch, logger)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Stop()

	logger.Info("watching for changes, press Ctrl-C to stop", zap.String("dir", dir))
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
