package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photonkit/pkg/buildinfo"
	"github.com/matzehuels/photonkit/pkg/cache"
	"github.com/matzehuels/photonkit/pkg/cells"
	"github.com/matzehuels/photonkit/pkg/pdk"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "photonkit"

	// referencesDir holds the default difftest reference store under the
	// cache directory.
	referencesDir = "references"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// out receives command output; nil means stdout.
	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, mainly for tests.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

func (c *CLI) stdout() io.Writer {
	if c.out == nil {
		return os.Stdout
	}
	return c.out
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Photonkit builds photonic and electronic layout cells",
		Long:         `Photonkit is a layout kernel for photonic and electronic integrated circuits. It builds parametric cells from cross-sections and paths, composes them into hierarchies, and exports flattened geometry.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().String("pdk", "", "PDK file (TOML) to resolve layers and cross-sections (default: generic)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return nil
	}

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.layersCommand())
	root.AddCommand(c.netlistCommand())
	root.AddCommand(c.difftestCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Registry Factory
// =============================================================================

// newRegistry creates a generator registry over a fresh component cache,
// resolving names through the PDK given by --pdk.
func (c *CLI) newRegistry(cmd *cobra.Command) (*cells.Registry, error) {
	kit, err := loadPDK(cmd)
	if err != nil {
		return nil, err
	}
	lib := cells.NewLibrary(cache.New(cache.WithLogger(c.Logger)), c.Logger)
	return cells.NewRegistry(lib, kit), nil
}

func loadPDK(cmd *cobra.Command) (*pdk.PDK, error) {
	path, _ := cmd.Flags().GetString("pdk")
	if path == "" {
		return pdk.Generic(), nil
	}
	return pdk.Load(path)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/photonkit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultStoreURL is the file store the difftest command uses without --store.
func defaultStoreURL() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return "file://" + filepath.Join(dir, referencesDir), nil
}
