// Package installer installs, removes and queries OS packages through the
// host's native package manager (apt, yum/dnf or zypper).
//
// An Install call refreshes repository metadata when needed, runs the package
// manager and classifies the result. A retryable failure triggers one forced
// refresh and one more attempt; a second failure, or any fatal
// classification, is returned as an error.
package installer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mensylisir/stackpkg/pkg/config"
	"github.com/mensylisir/stackpkg/pkg/connector"
	"github.com/mensylisir/stackpkg/pkg/distro"
	serrors "github.com/mensylisir/stackpkg/pkg/errors"
	"github.com/mensylisir/stackpkg/pkg/logger"
	"github.com/mensylisir/stackpkg/pkg/session"
)

// InstallError describes a failed install. It is returned wrapped in an
// *errors.Error of kind KindInstallFatal or KindInstallRetryable.
type InstallError struct {
	Packages       []string
	Backend        string
	Classification Classification
	// FatalLine is the output line that made the failure fatal, if any.
	FatalLine string
	ExitCode  int
	Cause     error
}

func (e *InstallError) Error() string {
	msg := fmt.Sprintf("%s failed to install %s (%s, exit code %d)", e.Backend, strings.Join(e.Packages, " "), e.Classification, e.ExitCode)
	if e.FatalLine != "" {
		msg += ": " + e.FatalLine
	}
	return msg
}

func (e *InstallError) Unwrap() error { return e.Cause }

// Fatal reports whether the failure was classified from the tool's output.
func (e *InstallError) Fatal() bool { return e.Classification == Fatal }

// Options configures an Installer. Conn, Classifier and Session are required.
type Options struct {
	Config     *config.Config
	Conn       connector.Connector
	Classifier *distro.Classifier
	Session    *session.Session
	Logger     *logger.Logger
	Waiter     Waiter
	Clock      Clock
}

// Installer is safe for concurrent use; calls are serialized.
type Installer struct {
	mu         sync.Mutex
	cfg        *config.Config
	conn       connector.Connector
	classifier *distro.Classifier
	sess       *session.Session
	log        *logger.Logger
	waiter     Waiter
	clock      Clock
}

func New(opts Options) *Installer {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	if opts.Waiter == nil {
		opts.Waiter = NewWaiter()
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Session == nil {
		opts.Session = session.New()
	}
	return &Installer{
		cfg:        opts.Config,
		conn:       opts.Conn,
		classifier: opts.Classifier,
		sess:       opts.Session,
		log:        opts.Logger.With("component", "installer", "run_id", shortID(opts.Session.ID())),
		waiter:     opts.Waiter,
		clock:      opts.Clock,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// run executes a package manager command as root with the proxy environment,
// streaming its output into the log. timeout 0 means no limit.
func (i *Installer) run(ctx context.Context, cmd string, timeout time.Duration) ([]byte, []byte, error) {
	stream := i.log.Writer(logger.InfoLevel)
	defer stream.Flush()
	return i.conn.Exec(ctx, cmd, &connector.ExecOptions{
		Sudo:    true,
		Timeout: timeout,
		Env:     i.cfg.Proxy.Env(),
		Stream:  stream,
	})
}

// combinedOutput joins the two streams so that a line starting stderr is
// still a line start when stdout lacks a trailing newline.
func combinedOutput(stdout, stderr []byte) string {
	if len(stdout) > 0 && stdout[len(stdout)-1] != '\n' && len(stderr) > 0 {
		return string(stdout) + "\n" + string(stderr)
	}
	return string(stdout) + string(stderr)
}

// UpdateRepoIfNeeded refreshes package metadata at most once per run unless
// force or RetryUpdate is set. Only deb hosts need an explicit refresh.
func (i *Installer) UpdateRepoIfNeeded(ctx context.Context, force bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.updateRepoIfNeeded(ctx, force)
}

func (i *Installer) updateRepoIfNeeded(ctx context.Context, force bool) error {
	switch {
	case i.cfg.NoUpdateRepos:
		i.log.Debugf("repository refresh disabled")
		return nil
	case i.cfg.Offline:
		i.log.Debugf("offline, skipping repository refresh")
		return nil
	case i.sess.ReposUpdated() && !force && !i.cfg.RetryUpdate:
		i.log.Debugf("repositories already refreshed in this run")
		return nil
	}

	info, err := i.classifier.Info(ctx)
	if err != nil {
		return err
	}
	if !distro.IsUbuntu(info) {
		return nil
	}

	cmd, err := aptBackend{proxy: i.cfg.Proxy}.UpdateCmd()
	if err != nil {
		return err
	}

	timeout := i.cfg.RepoUpdateTimeout.Duration
	backoff := i.cfg.RepoUpdateBackoff.Duration
	deadline := i.clock.Now().Add(timeout)
	for attempt := 1; ; attempt++ {
		remaining := deadline.Sub(i.clock.Now())
		if remaining <= 0 {
			return serrors.New(serrors.KindRepoUpdate, "installer.UpdateRepo", "apt-get update did not succeed within %s (%d attempts)", timeout, attempt-1)
		}

		_, stderr, runErr := i.run(ctx, cmd, remaining)
		if runErr == nil {
			if err := i.sess.SetReposUpdated(true); err != nil {
				i.log.Warnf("failed to persist repository state: %v", err)
			}
			i.log.Successf("package repositories refreshed")
			return nil
		}
		if ctx.Err() != nil {
			return serrors.Wrap(serrors.KindRepoUpdate, "installer.UpdateRepo", ctx.Err(), "repository refresh aborted")
		}

		i.log.Warnf("apt-get update attempt %d failed (exit code %d): %s", attempt, connector.ExitCodeOf(runErr), strings.TrimSpace(string(stderr)))
		wait := backoff
		if left := deadline.Sub(i.clock.Now()); left < wait {
			wait = left
		}
		if wait > 0 {
			if err := i.waiter.Wait(ctx, wait, "retrying apt-get update"); err != nil {
				return serrors.Wrap(serrors.KindRepoUpdate, "installer.UpdateRepo", err, "repository refresh aborted")
			}
		}
	}
}

// AttemptInstall runs the package manager once and classifies the result.
// The error is non-nil only when no attempt could be made.
func (i *Installer) AttemptInstall(ctx context.Context, names []string) (Classification, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	res, err := i.attempt(ctx, names)
	if err != nil {
		return Retryable, err
	}
	return res.Classification, nil
}

func (i *Installer) attempt(ctx context.Context, names []string) (*InstallError, error) {
	info, err := i.classifier.Info(ctx)
	if err != nil {
		return nil, err
	}
	be, err := backendFor(info, i.cfg)
	if err != nil {
		return nil, err
	}
	cmd, err := be.InstallCmd(names)
	if err != nil {
		return nil, err
	}

	i.log.Infof("installing with %s: %s", be.Name(), strings.Join(names, " "))
	stdout, stderr, runErr := i.run(ctx, cmd, 0)
	if ctx.Err() != nil {
		return nil, serrors.Wrap(serrors.KindUnknown, "installer.Install", ctx.Err(), "install aborted")
	}

	output := combinedOutput(stdout, stderr)
	res := &InstallError{
		Packages:       names,
		Backend:        be.Name(),
		Classification: be.Classify(output, runErr),
		ExitCode:       connector.ExitCodeOf(runErr),
		Cause:          runErr,
	}
	if res.Classification == Fatal {
		res.FatalLine, _ = YumOutputPatterns.FatalLine(output)
	}
	return res, nil
}

// Install installs names, refreshing repositories as needed and retrying a
// retryable failure exactly once after a forced refresh. Offline mode and an
// empty list are no-ops.
func (i *Installer) Install(ctx context.Context, names ...string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cfg.Offline {
		i.log.Infof("offline, not installing %s", strings.Join(names, " "))
		return nil
	}
	if len(names) == 0 {
		return nil
	}

	if err := i.updateRepoIfNeeded(ctx, false); err != nil {
		return err
	}

	res, err := i.attempt(ctx, names)
	if err != nil {
		return err
	}
	if res.Classification == Retryable {
		i.log.Warnf("%v, refreshing repositories and retrying once", res)
		if err := i.updateRepoIfNeeded(ctx, true); err != nil {
			return err
		}
		if res, err = i.attempt(ctx, names); err != nil {
			return err
		}
	}

	switch res.Classification {
	case Success:
		i.log.Successf("installed %s", strings.Join(names, " "))
		return nil
	case Fatal:
		return serrors.Wrap(serrors.KindInstallFatal, "installer.Install", res, "package installation failed")
	default:
		return serrors.Wrap(serrors.KindInstallRetryable, "installer.Install", res, "package installation failed after a forced repository refresh")
	}
}

// IsInstalled reports whether every named package is installed. An empty
// list reports false.
func (i *Installer) IsInstalled(ctx context.Context, names ...string) (bool, error) {
	if len(names) == 0 {
		return false, nil
	}
	info, err := i.classifier.Info(ctx)
	if err != nil {
		return false, err
	}
	cmd, err := queryCmd(info, names)
	if err != nil {
		return false, err
	}

	_, _, runErr := i.conn.Exec(ctx, cmd, nil)
	if runErr == nil {
		return true, nil
	}
	if connector.ExitCodeOf(runErr) < 0 {
		return false, serrors.Wrap(serrors.KindUnknown, "installer.IsInstalled", runErr, "package query did not complete")
	}
	return false, nil
}

// Uninstall removes names. Package manager failures are logged and ignored;
// only an unsupported platform is an error.
func (i *Installer) Uninstall(ctx context.Context, names ...string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(names) == 0 {
		return nil
	}
	info, err := i.classifier.Info(ctx)
	if err != nil {
		return err
	}
	be, err := backendFor(info, i.cfg)
	if err != nil {
		return err
	}
	cmd, err := be.UninstallCmd(names)
	if err != nil {
		return err
	}

	if _, stderr, runErr := i.run(ctx, cmd, 0); runErr != nil {
		i.log.Warnf("%s could not remove %s (exit code %d): %s", be.Name(), strings.Join(names, " "), connector.ExitCodeOf(runErr), strings.TrimSpace(string(stderr)))
		return nil
	}
	i.log.Infof("removed %s", strings.Join(names, " "))
	return nil
}
