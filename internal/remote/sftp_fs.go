// Package remote serves scans from a remote host over the SFTP subsystem.
package remote

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	pathpkg "path"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/sftp"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

const defaultRemotePath = "."

const defaultRemoteBlockSize uint64 = scanner.DefaultBlockAlign

// Config configures the SSH connection.
type Config struct {
	// Target is user@host.
	Target string
	Port   int
	// BatchMode disables every interactive prompt.
	BatchMode bool
	Timeout   time.Duration
	// IdentityFile is tried before the default keys in ~/.ssh.
	IdentityFile string
	// KnownHosts overrides ~/.ssh/known_hosts.
	KnownHosts string

	Logger logrus.FieldLogger
}

type sftpClient interface {
	ReadDir(string) ([]os.FileInfo, error)
	Stat(string) (os.FileInfo, error)
	RealPath(string) (string, error)
}

var dialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

var sshNewClientConn = func(conn net.Conn, addr string, config *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
	return ssh.NewClientConn(conn, addr, config)
}

// FS implements scanner.FS on top of an SFTP session. Remote servers do not
// report block counts, so disk usage is estimated from the apparent size
// rounded up to the remote filesystem's fragment size.
type FS struct {
	client    sftpClient
	closer    io.Closer
	blockSize uint64
}

var _ scanner.FS = (*FS)(nil)

// Dial connects to cfg.Target and opens an SFTP session.
func Dial(ctx context.Context, cfg Config) (*FS, error) {
	client, closer, err := dialSFTP(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newFS(client, closer), nil
}

func newFS(client sftpClient, closer io.Closer) *FS {
	return &FS{client: client, closer: closer, blockSize: defaultRemoteBlockSize}
}

// Close ends the SFTP session and the SSH connection.
func (f *FS) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

func (f *FS) Root(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		root = defaultRemotePath
	}

	rootPath := cleanRemotePath(root)
	if resolved, err := f.client.RealPath(rootPath); err == nil {
		rootPath = cleanRemotePath(resolved)
	}

	info, err := f.client.Stat(rootPath)
	if err != nil {
		return "", &fs.PathError{Op: "stat", Path: rootPath, Err: err}
	}
	if !info.IsDir() {
		return "", &fs.PathError{Op: "scan", Path: rootPath, Err: syscall.ENOTDIR}
	}

	f.blockSize = remoteBlockSize(f.client, rootPath)
	return rootPath, nil
}

func (f *FS) ReadDir(dir string) ([]scanner.Dirent, error) {
	infos, err := f.client.ReadDir(dir)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: dir, Err: err}
	}
	out := make([]scanner.Dirent, 0, len(infos))
	for _, info := range infos {
		out = append(out, scanner.Dirent{Name: info.Name(), Info: info})
	}
	return out, nil
}

func (f *FS) Join(elem ...string) string {
	return pathpkg.Join(elem...)
}

// Inspect reads ownership, raw mode and access time from the SFTP attributes.
// Device and pipe bits are not interpreted remotely.
func (f *FS) Inspect(info fs.FileInfo) scanner.StatInfo {
	st := scanner.StatInfo{
		Mode:  uint32(info.Mode().Perm()),
		Align: f.blockSize,
	}
	if attrs, ok := info.Sys().(*sftp.FileStat); ok {
		st.Mode = attrs.Mode
		st.UID = attrs.UID
		st.GID = attrs.GID
		st.Atime = time.Unix(int64(attrs.Atime), 0)
	}
	return st
}

func cleanRemotePath(p string) string {
	if p == "" {
		return defaultRemotePath
	}
	clean := pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "" {
		return defaultRemotePath
	}
	return clean
}

func remoteBlockSize(client sftpClient, rootPath string) uint64 {
	vfsClient, ok := client.(interface {
		StatVFS(path string) (*sftp.StatVFS, error)
	})
	if !ok {
		return defaultRemoteBlockSize
	}

	stat, err := vfsClient.StatVFS(rootPath)
	if err != nil || stat == nil {
		return defaultRemoteBlockSize
	}
	if stat.Frsize > 0 {
		return stat.Frsize
	}
	if stat.Bsize > 0 {
		return stat.Bsize
	}
	return defaultRemoteBlockSize
}

func dialSFTP(ctx context.Context, cfg Config) (sftpClient, io.Closer, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, nil, fmt.Errorf("ssh port must be between 1 and 65535")
	}

	user, host, err := parseSSHTarget(cfg.Target)
	if err != nil {
		return nil, nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"host": host, "port": cfg.Port, "user": user})

	hosts, err := newKnownHosts(cfg.KnownHosts, host, cfg.Port, cfg.BatchMode, log)
	if err != nil {
		return nil, nil, err
	}

	auth, err := buildAuthMethods(log, authOptions{
		user:         user,
		host:         host,
		identityFile: cfg.IdentityFile,
		batchMode:    cfg.BatchMode,
	})
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sshConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hosts.check,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", cfg.Port))
	log.Debug("connecting")
	sshClient, err := connectSSH(dialCtx, addr, sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("cannot start SFTP subsystem: %w", err)
	}
	log.Debug("sftp session ready")

	closer := &remoteCloser{ssh: sshClient, sftp: sftpClient}
	return sftpClient, closer, nil
}

func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Ensure cancellation interrupts handshake/authentication.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c, chans, reqs, err := sshNewClientConn(conn, addr, config)
	close(done)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

type remoteCloser struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (c *remoteCloser) Close() error {
	var retErr error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			retErr = err
		}
	}
	if c.ssh != nil {
		if err := c.ssh.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}
	return retErr
}
