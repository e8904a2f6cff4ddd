package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mensylisir/stackpkg/pkg/config"
	"github.com/mensylisir/stackpkg/pkg/connector"
	"github.com/mensylisir/stackpkg/pkg/distro"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/installer"
	"github.com/mensylisir/stackpkg/pkg/logger"
	"github.com/mensylisir/stackpkg/pkg/resolver"
	"github.com/mensylisir/stackpkg/pkg/session"
)

var (
	// Global flags
	cfgFile      string
	verboseFlag  bool
	stateFile    string
	offlineFlag  bool
	filesDir     string
	logDir       string
	strictFamily bool
)

// errNotInstalled makes the process exit 1 without logging anything.
var errNotInstalled = errors.New("not installed")

// app is everything a subcommand needs, built once per invocation.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	classifier *distro.Classifier
	resolver   *resolver.Resolver
	installer  *installer.Installer
}

var rt *app

var rootCmd = &cobra.Command{
	Use:   "stackpkg",
	Short: "stackpkg resolves and installs the OS packages an OpenStack deployment needs.",
	Long: `stackpkg reads per-service package manifests, filters them for the
detected distribution and installs the result with apt, yum/dnf or zypper.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		rt, err = newApp(cmd)
		return err
	},
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, serrors.Wrap(serrors.KindConfig, "cmd.config", err, "invalid command line")
	}

	logOpts := logger.DefaultOptions()
	logOpts.ColorConsole = term.IsTerminal(int(os.Stderr.Fd()))
	logOpts.ErrorLogPath = cfg.ErrorLogPath()
	if lvl, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logOpts.ConsoleLevel = lvl
	}
	if verboseFlag {
		logOpts.ConsoleLevel = logger.DebugLevel
	}
	logger.Init(logOpts)
	log := logger.Get()

	sess, err := session.Open(cfg.StateFile)
	if err != nil {
		return nil, err
	}
	if cfg.ReposUpdated && !sess.ReposUpdated() {
		if err := sess.SetReposUpdated(true); err != nil {
			log.Warnf("failed to persist repository state: %v", err)
		}
	}

	log.Debugf("run %s, state file %q", sess.ID(), sess.StatePath())

	conn := connector.NewLocalConnector(log)
	detector := distro.NewHostDetector(conn, log)
	detector.Strict = cfg.StrictFamily
	classifier := distro.NewClassifier(detector, sess)

	return &app{
		cfg:        cfg,
		log:        log,
		classifier: classifier,
		resolver:   resolver.New(cfg.FilesDir, classifier, log),
		installer: installer.New(installer.Options{
			Config:     cfg,
			Conn:       conn,
			Classifier: classifier,
			Session:    sess,
			Logger:     log,
		}),
	}, nil
}

// applyFlags overrides cfg with flags given explicitly on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("state-file") {
		cfg.StateFile = stateFile
	}
	if flags.Changed("offline") {
		cfg.Offline = offlineFlag
	}
	if flags.Changed("files-dir") {
		cfg.FilesDir = filesDir
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = logDir
	}
	if flags.Changed("strict-family") {
		cfg.StrictFamily = strictFamily
	}
}

// Execute runs the root command and returns the process exit status. Errors
// are logged once here, with their stack, and mapped to an exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	defer func() { _ = logger.SyncGlobal() }()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNotInstalled):
		return 1
	}
	logger.Error("%+v", err)
	return serrors.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML, or TOML by .toml extension)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state-file", "", "JSON file sharing run state between invocations (env STACKPKG_STATE_FILE)")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "Skip every network package operation (env OFFLINE)")
	rootCmd.PersistentFlags().StringVar(&filesDir, "files-dir", "", "Base directory of the package manifests (env FILES)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory of the persistent error log (env LOGDIR)")
	rootCmd.PersistentFlags().BoolVar(&strictFamily, "strict-family", false, "Reject vendors that are not known deb or rpm distributions")
}
