package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"ircount/config"
	"ircount/internal/adapter/analyzer"
	"ircount/internal/adapter/cache"
	"ircount/internal/adapter/fs"
	"ircount/internal/domain"
	"ircount/internal/logger"
	"ircount/internal/port"
	"ircount/internal/usecase"
)

// ErrUsage is returned when the command is not given exactly one file.
var ErrUsage = errors.New("usage")

type options struct {
	cfgFile   string
	functions bool
	json      bool
	cache     bool
	progress  bool
	verbose   bool

	cfg *config.Config
}

// NewRootCommand builds the ircount command.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ircount <file>",
		Short: "Count instruction lines in a textual IR listing",
		Long: `ircount counts executable instruction lines inside function bodies of a
textual IR listing (LLVM .ll style) by line pattern matching.

Labels, metadata, attribute groups, declarations, comments and anything
outside a define ... } block are not counted.

Example usage:
  ircount main.ll                # print the instruction count
  ircount main.ll --functions    # also list per-function counts
  ircount main.ll --json         # full result as JSON`,
		Args:          exactlyOneFile,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.cfgFile != "" {
				opts.cfg, err = config.Load(opts.cfgFile)
			} else {
				var dir string
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				opts.cfg, err = config.LoadFromDir(dir)
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger.SetWriter(cmd.ErrOrStderr())
			logger.SetColor(isTerminal(cmd.ErrOrStderr()))
			logger.SetLevel(logger.ParseLevel(opts.cfg.Logging.Level))
			if opts.verbose {
				logger.SetLevel(logger.DEBUG)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./ircount.yaml)")
	cmd.Flags().BoolVar(&opts.functions, "functions", false, "also print per-function counts")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output the full result as JSON")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "reuse results from .ircount/cache.db")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging on stderr")

	return cmd
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, ErrUsage) {
			logger.Error("%v", err)
		}
		os.Exit(1)
	}
}

// exactlyOneFile runs before config loading, so a broken config never hides
// the usage line. A path starting with "-" must follow "--".
func exactlyOneFile(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "Usage: %s [--] <file.ll>\n", cmd.Name())
		return ErrUsage
	}
	return nil
}

func runCount(cmd *cobra.Command, opts *options, args []string) error {
	out := cmd.OutOrStdout()
	cfg := opts.cfg

	counter, err := analyzer.NewCounter(cfg.Count)
	if err != nil {
		return fmt.Errorf("invalid count settings: %w", err)
	}
	reader := fs.NewReader(opts.progress, cmd.ErrOrStderr())

	var resultCache port.ResultCache
	if opts.cache || cfg.Cache.Enabled {
		bc, err := openCache(cfg)
		if err != nil {
			logger.Warn("result cache disabled: %v", err)
		} else {
			defer bc.Close()
			resultCache = bc
		}
	}

	result, err := usecase.NewCountUseCase(reader, counter, resultCache).Count(args[0])
	if err != nil {
		return err
	}

	if opts.json {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintln(out, result.Instructions)
	if opts.functions {
		printFunctions(out, result)
	}
	return nil
}

func openCache(cfg *config.Config) (*cache.BoltCache, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	if err := config.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create .ircount directory: %w", err)
	}

	bc, err := cache.NewBoltCache(config.CacheDBPath(dir))
	if err != nil {
		return nil, err
	}

	migration, err := bc.Prepare(cfg)
	if err != nil {
		bc.Close()
		return nil, err
	}
	if migration.NeedsRebuild {
		logger.Info("cache cleared: %s", migration.Reason)
	} else if migration.NeedsMigration {
		logger.Debug("cache schema: %s", migration.Reason)
	}
	if n, err := bc.Len(); err == nil {
		logger.Debug("cache %s holds %d results", config.CacheDBPath(dir), n)
	}
	return bc, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printFunctions(w io.Writer, result *domain.CountResult) {
	for _, fn := range result.Functions {
		name := fn.Name
		if name == "" {
			name = fmt.Sprintf("<line %d>", fn.Line)
		}
		if fn.Skipped {
			fmt.Fprintf(w, "%s\tskipped\n", name)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\n", name, fn.Instructions)
	}
}
