package remote

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/term"
)

var defaultPrivateKeyFiles = []string{
	"id_ed25519",
	"id_ecdsa",
	"id_rsa",
	"id_dsa",
}

func parseSSHTarget(target string) (string, string, error) {
	if strings.TrimSpace(target) == "" {
		return "", "", fmt.Errorf("remote target is required")
	}

	user, host, ok := strings.Cut(target, "@")
	if !ok || user == "" || host == "" {
		return "", "", fmt.Errorf("invalid remote target %q: expected user@host", target)
	}

	return user, host, nil
}

// knownHosts verifies the key of one host:port against a known_hosts file.
// Unknown hosts are trusted on first use after confirmation; a changed key
// needs confirmation before it replaces the stored ones. In batch mode both
// cases fail.
type knownHosts struct {
	path  string
	host  string
	port  int
	batch bool
	log   logrus.FieldLogger

	verify  ssh.HostKeyCallback
	confirm func(prompt string) (bool, error)
}

// newKnownHosts loads path, or ~/.ssh/known_hosts when path is empty,
// creating the file if needed.
func newKnownHosts(path, host string, port int, batch bool, log logrus.FieldLogger) (*knownHosts, error) {
	path, err := ensureKnownHostsFile(path)
	if err != nil {
		return nil, err
	}
	verify, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load known_hosts: %w", err)
	}
	return &knownHosts{
		path:    path,
		host:    host,
		port:    port,
		batch:   batch,
		log:     log,
		verify:  verify,
		confirm: promptYesNo,
	}, nil
}

// address is the form new entries are written under: the bare host for
// port 22, [host]:port otherwise.
func (k *knownHosts) address() string {
	return knownhosts.Normalize(net.JoinHostPort(k.host, strconv.Itoa(k.port)))
}

// aliases lists the host patterns that name this exact host and port.
func (k *knownHosts) aliases() []string {
	names := []string{k.address()}
	if k.port == 22 {
		names = append(names, fmt.Sprintf("[%s]:22", k.host))
	}
	return names
}

// check is the ssh.HostKeyCallback.
func (k *knownHosts) check(hostname string, remote net.Addr, key ssh.PublicKey) error {
	err := k.verify(hostname, remote, key)
	if err == nil {
		return nil
	}
	var keyErr *knownhosts.KeyError
	if !errors.As(err, &keyErr) {
		return fmt.Errorf("host key verification failed: %w", err)
	}
	if len(keyErr.Want) == 0 {
		return k.trustNew(key)
	}
	return k.replaceChanged(key, keyErr.Want)
}

func (k *knownHosts) trustNew(key ssh.PublicKey) error {
	addr, presented := k.address(), ssh.FingerprintSHA256(key)
	if k.batch {
		return fmt.Errorf("unknown host key for %s (%s); run ssh once to trust it or drop --ssh-batch", addr, presented)
	}
	ok, err := k.confirm(fmt.Sprintf(
		"The authenticity of host '%s' can't be established.\n%s key fingerprint is %s.\nTrust this host and continue connecting (yes/no)? ",
		addr, key.Type(), presented))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("host key for %s was not trusted", addr)
	}

	f, err := os.OpenFile(k.path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("cannot update known_hosts: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(knownhosts.Line([]string{addr}, key) + "\n"); err != nil {
		return fmt.Errorf("cannot write known_hosts entry: %w", err)
	}
	k.log.WithField("fingerprint", presented).Info("host key added to known_hosts")
	return nil
}

func (k *knownHosts) replaceChanged(key ssh.PublicKey, want []knownhosts.KnownKey) error {
	addr, presented := k.address(), ssh.FingerprintSHA256(key)
	expected := make([]string, 0, len(want))
	for _, w := range want {
		expected = append(expected, ssh.FingerprintSHA256(w.Key))
	}
	if k.batch {
		return fmt.Errorf("host key mismatch for %s: expected %s, presented %s",
			addr, strings.Join(expected, ", "), presented)
	}
	ok, err := k.confirm(fmt.Sprintf(
		"WARNING: HOST KEY CHANGED for '%s'.\nExpected: %s\nPresented: %s\nReplace stored key and continue (yes/no)? ",
		addr, strings.Join(expected, ", "), presented))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("host key mismatch for %s", addr)
	}

	data, err := os.ReadFile(k.path)
	if err != nil {
		return fmt.Errorf("cannot read known_hosts: %w", err)
	}
	updated := dropKnownHostEntries(data, k.aliases())
	if len(updated) > 0 && updated[len(updated)-1] != '\n' {
		updated = append(updated, '\n')
	}
	updated = append(updated, knownhosts.Line([]string{addr}, key)...)
	updated = append(updated, '\n')
	if err := os.WriteFile(k.path, updated, 0o600); err != nil {
		return fmt.Errorf("cannot write known_hosts: %w", err)
	}
	k.log.WithField("fingerprint", presented).Warn("replaced changed host key in known_hosts")
	return nil
}

func ensureKnownHostsFile(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory for known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			return "", fmt.Errorf("cannot create known_hosts: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("cannot access known_hosts: %w", err)
	}

	return path, nil
}

// dropKnownHostEntries removes every line whose host list names one of
// aliases. Comments, blank lines and marker-only lines are kept.
func dropKnownHostEntries(data []byte, aliases []string) []byte {
	lines := strings.Split(string(data), "\n")
	keep := lines[:0]
	for _, line := range lines {
		if !namesAlias(line, aliases) {
			keep = append(keep, line)
		}
	}
	return []byte(strings.Join(keep, "\n"))
}

func namesAlias(line string, aliases []string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false
	}
	hosts := fields[0]
	if strings.HasPrefix(hosts, "@") {
		if len(fields) < 2 {
			return false
		}
		hosts = fields[1]
	}
	for _, h := range strings.Split(hosts, ",") {
		for _, a := range aliases {
			if h == a {
				return true
			}
		}
	}
	return false
}

func promptYesNo(prompt string) (bool, error) {
	stdinFD := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFD) {
		return false, fmt.Errorf("cannot prompt for host key trust: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("host key prompt failed: %w", err)
	}

	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes", nil
}

type authOptions struct {
	user         string
	host         string
	identityFile string
	batchMode    bool
}

// buildAuthMethods returns, in order: the SSH agent, the explicit identity
// file, the default keys and, unless in batch mode, password prompts.
func buildAuthMethods(log logrus.FieldLogger, opts authOptions) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if sock := strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")); sock != "" {
		methods = append(methods, ssh.PublicKeysCallback(agentSigners(sock)))
	}

	var signers []ssh.Signer
	if opts.identityFile != "" {
		signer, err := loadSigner(opts.identityFile)
		if err != nil {
			return nil, fmt.Errorf("cannot use identity file: %w", err)
		}
		signers = append(signers, signer)
	}
	signers = append(signers, defaultSigners(log)...)
	if len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}

	if !opts.batchMode {
		pw := &passwordSource{prompt: fmt.Sprintf("%s@%s's password: ", opts.user, opts.host)}
		methods = append(methods, ssh.PasswordCallback(pw.get), ssh.KeyboardInteractive(pw.answer))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH auth methods available (configure ssh-agent, pass --ssh-identity or drop --ssh-batch)")
	}
	return methods, nil
}

func agentSigners(sock string) func() ([]ssh.Signer, error) {
	return func() ([]ssh.Signer, error) {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return agent.NewClient(conn).Signers()
	}
}

func loadSigner(path string) (ssh.Signer, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(pem)
}

// defaultSigners loads the unencrypted keys of ~/.ssh. Encrypted keys are
// left to the agent.
func defaultSigners(log logrus.FieldLogger) []ssh.Signer {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var signers []ssh.Signer
	for _, name := range defaultPrivateKeyFiles {
		path := filepath.Join(home, ".ssh", name)
		signer, err := loadSigner(path)
		var passphraseErr *ssh.PassphraseMissingError
		switch {
		case errors.As(err, &passphraseErr):
			log.WithField("key", path).Debug("skipping passphrase-protected key")
		case err == nil:
			signers = append(signers, signer)
		}
	}
	return signers
}

// passwordSource asks for the password once and serves both the password
// and the keyboard-interactive methods from the answer.
type passwordSource struct {
	prompt string
	read   func(fd int) ([]byte, error)

	mu   sync.Mutex
	pass *string
}

func (p *passwordSource) get() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pass != nil {
		return *p.pass, nil
	}

	fd := int(os.Stdin.Fd())
	read := p.read
	if read == nil {
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("cannot prompt for SSH password: stdin is not a terminal")
		}
		read = term.ReadPassword
	}

	fmt.Fprint(os.Stderr, p.prompt)
	b, err := read(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("password prompt failed: %w", err)
	}
	pass := string(b)
	p.pass = &pass
	return pass, nil
}

// answer fills every hidden question with the password and leaves echoed
// ones empty.
func (p *passwordSource) answer(_, _ string, questions []string, echos []bool) ([]string, error) {
	pass, err := p.get()
	if err != nil {
		return nil, err
	}
	answers := make([]string, len(questions))
	for i := range questions {
		if i >= len(echos) || !echos[i] {
			answers[i] = pass
		}
	}
	return answers, nil
}
