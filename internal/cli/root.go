// Package cli implements the gscandir command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sadopc/gscandir/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type sshFlags struct {
	port       int
	batch      bool
	identity   string
	knownHosts string
	timeout    time.Duration
}

type scanFlags struct {
	sorted        bool
	order         string
	skipHidden    bool
	maxDepth      int
	maxFiles      int
	dirInclude    []string
	dirExclude    []string
	fileInclude   []string
	fileExclude   []string
	caseSensitive bool
	metadata      string
	export        string
	noProgress    bool
}

// app carries the state shared by all subcommands of one invocation.
type app struct {
	version    string
	configPath string
	verbose    bool
	noColor    bool
	ssh        sshFlags
	scan       scanFlags

	cfg *config.Config
	log *logrus.Logger

	stdin io.Reader
	// interactive reports whether the live view may take over the terminal.
	interactive func() bool
}

// NewRootCmd creates the root command.
func NewRootCmd(version string) *cobra.Command {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	a := &app{
		version:     version,
		log:         log,
		stdin:       os.Stdin,
		interactive: stdioIsTerminal,
	}

	rootCmd := &cobra.Command{
		Use:   "gscandir",
		Short: "Scan directory trees concurrently",
		Long: `gscandir walks a directory tree in the background and reports what it finds.

Subcommands:
  count   aggregate statistics (dirs, files, links, sizes)
  list    one line per entry, optionally with extended metadata
  walk    a table of contents per directory
  show    print a previously exported scan

A target is a local path or user@host [remote-path] for a scan over SFTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	pf.IntVar(&a.ssh.port, "ssh-port", 22, "SSH port for remote scans")
	pf.BoolVar(&a.ssh.batch, "ssh-batch", false, "Disable SSH prompts (key/agent auth only)")
	pf.StringVar(&a.ssh.identity, "ssh-identity", "", "Private key tried before the default keys")
	pf.StringVar(&a.ssh.knownHosts, "ssh-known-hosts", "", "known_hosts file (default ~/.ssh/known_hosts)")
	pf.DurationVar(&a.ssh.timeout, "ssh-timeout", 15*time.Second, "SSH connection timeout")

	rootCmd.AddCommand(
		newCountCmd(a),
		newListCmd(a),
		newWalkCmd(a),
		newShowCmd(a),
	)

	return rootCmd
}

// setup loads the config file, lets explicitly set flags override it and
// configures logging and colors.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.mergeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if a.verbose {
		level = logrus.DebugLevel
	}
	a.log.SetLevel(level)
	a.log.SetOutput(cmd.ErrOrStderr())

	if a.noColor {
		color.NoColor = true
	}
	a.log.WithField("config", a.configPath).Debug("configuration loaded")
	return nil
}

func (a *app) mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("sorted") {
		cfg.Sorted = a.scan.sorted
	}
	if changed("order") {
		cfg.Order = a.scan.order
	}
	if changed("skip-hidden") {
		cfg.SkipHidden = a.scan.skipHidden
	}
	if changed("max-depth") {
		cfg.MaxDepth = a.scan.maxDepth
	}
	if changed("max-files") {
		cfg.MaxFileCount = a.scan.maxFiles
	}
	if changed("dir-include") {
		cfg.DirInclude = a.scan.dirInclude
	}
	if changed("dir-exclude") {
		cfg.DirExclude = a.scan.dirExclude
	}
	if changed("file-include") {
		cfg.FileInclude = a.scan.fileInclude
	}
	if changed("file-exclude") {
		cfg.FileExclude = a.scan.fileExclude
	}
	if changed("case-sensitive") {
		cfg.CaseSensitive = a.scan.caseSensitive
	}
	if changed("metadata") {
		cfg.Metadata = a.scan.metadata
	}

	if changed("ssh-port") {
		cfg.SSH.Port = a.ssh.port
	}
	if changed("ssh-batch") {
		cfg.SSH.BatchMode = a.ssh.batch
	}
	if changed("ssh-identity") {
		cfg.SSH.IdentityFile = a.ssh.identity
	}
	if changed("ssh-known-hosts") {
		cfg.SSH.KnownHosts = a.ssh.knownHosts
	}
	if changed("ssh-timeout") {
		cfg.SSH.Timeout = a.ssh.timeout
	}
}

// addScanFlags registers the traversal flags shared by the scan subcommands.
func (a *app) addScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&a.scan.sorted, "sorted", false, "Visit the children of each directory in name order")
	f.StringVar(&a.scan.order, "order", "os", "Name order: os, lexical or natural")
	f.BoolVar(&a.scan.skipHidden, "skip-hidden", false, "Skip entries whose name starts with a dot")
	f.IntVarP(&a.scan.maxDepth, "max-depth", "d", 0, "Maximum depth (0 = unlimited)")
	f.IntVar(&a.scan.maxFiles, "max-files", 0, "Stop reporting files after this many (0 = unlimited)")
	f.StringSliceVar(&a.scan.dirInclude, "dir-include", nil, "Only enter directories matching these globs")
	f.StringSliceVar(&a.scan.dirExclude, "dir-exclude", nil, "Skip directories matching these globs")
	f.StringSliceVar(&a.scan.fileInclude, "file-include", nil, "Only report files matching these globs")
	f.StringSliceVar(&a.scan.fileExclude, "file-exclude", nil, "Skip files matching these globs")
	f.BoolVar(&a.scan.caseSensitive, "case-sensitive", false, "Match globs case sensitively")
	f.StringVarP(&a.scan.metadata, "metadata", "m", "basic", "Metadata to collect: basic or ext")
	f.StringVarP(&a.scan.export, "export", "o", "", "Export results to a JSON file ('-' for stdout)")
}

func stdioIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}
