package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/sadopc/gscandir/internal/remote"
	"github.com/sadopc/gscandir/internal/scanner"
)

type scanTarget struct {
	Remote         bool
	LocalPath      string
	SSHDestination string
	RemotePath     string
}

// resolveScanTarget interprets the positional arguments: nothing, a local
// path, or user@host with an optional remote path. An existing local path
// always wins over the remote reading.
func resolveScanTarget(args []string) (scanTarget, error) {
	if len(args) == 0 {
		return scanTarget{LocalPath: "."}, nil
	}

	first := args[0]
	if _, err := os.Stat(first); err == nil {
		if len(args) > 1 {
			return scanTarget{}, fmt.Errorf("too many positional arguments for local scan")
		}
		return scanTarget{LocalPath: first}, nil
	}

	isRemote, err := checkRemoteTarget(first)
	if !isRemote {
		if len(args) > 1 {
			return scanTarget{}, fmt.Errorf("too many positional arguments")
		}
		return scanTarget{LocalPath: first}, nil
	}
	if err != nil {
		return scanTarget{}, err
	}
	if len(args) > 2 {
		return scanTarget{}, fmt.Errorf("too many positional arguments for remote scan")
	}

	t := scanTarget{Remote: true, SSHDestination: first, RemotePath: "."}
	if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
		t.RemotePath = args[1]
	}
	return t, nil
}

// checkRemoteTarget reports whether raw has the user@host form and, if so,
// whether it is well formed. Anything containing a path separator is local.
func checkRemoteTarget(raw string) (bool, error) {
	if strings.ContainsAny(raw, `/\`) || strings.Count(raw, "@") != 1 {
		return false, nil
	}

	user, host, _ := strings.Cut(raw, "@")
	switch {
	case user == "" || host == "":
		return true, fmt.Errorf("invalid remote target %q: expected user@host", raw)
	case strings.HasPrefix(user, "-") || strings.HasPrefix(host, "-"):
		return true, fmt.Errorf("invalid remote target %q", raw)
	case strings.ContainsAny(raw, " \t\r\n"):
		return true, fmt.Errorf("invalid remote target %q: spaces are not allowed", raw)
	}

	if _, port, err := net.SplitHostPort(host); err == nil && port != "" {
		return true, fmt.Errorf("remote target %q must not include :port; use --ssh-port", raw)
	}
	bracketed := strings.HasPrefix(host, "[")
	if bracketed != strings.HasSuffix(host, "]") || host == "[]" ||
		(!bracketed && strings.ContainsAny(host, "[]")) {
		return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
	}
	return true, nil
}

// openTarget returns the filesystem and root path to scan. The closer is
// never nil.
func (a *app) openTarget(ctx context.Context, args []string) (scanner.FS, string, io.Closer, error) {
	target, err := resolveScanTarget(args)
	if err != nil {
		return nil, "", nil, err
	}
	if !target.Remote {
		return scanner.Local(), target.LocalPath, noopCloser{}, nil
	}

	a.log.WithField("target", target.SSHDestination).Info("connecting")
	fsys, err := remote.Dial(ctx, remote.Config{
		Target:       target.SSHDestination,
		Port:         a.cfg.SSH.Port,
		BatchMode:    a.cfg.SSH.BatchMode,
		Timeout:      a.cfg.SSH.Timeout,
		IdentityFile: a.cfg.SSH.IdentityFile,
		KnownHosts:   a.cfg.SSH.KnownHosts,
		Logger:       a.log,
	})
	if err != nil {
		return nil, "", nil, err
	}
	return fsys, target.RemotePath, fsys, nil
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }
