// Package inspector is a read-only SSH console for listing the live
// threads and thread-groups of the running process, for diagnosing stuck
// threads and quota pressure without stopping the run. cmd/objectively
// does not start it.
package inspector

import (
	"fmt"
	"log"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Config configures one inspector listener.
type Config struct {
	Addr         string // e.g. "127.0.0.1:2323"
	HostKeyPath  string
	PasswordHash string // PHC-format Argon2id hash, see HashPassword
}

// Server is a standalone SSH server exposing the live runtime's thread and
// group tables as read-only commands. It never touches language state: it
// only reads the snapshots thread.Snapshot and object.AllObjects expose.
type Server struct {
	cfg Config
	ssh *ssh.Server
}

// New builds a Server bound to cfg.Addr. It does not start listening until
// ListenAndServe is called.
func New(cfg Config) (*Server, error) {
	if cfg.PasswordHash == "" {
		return nil, errors.New("inspector: Config.PasswordHash is required")
	}
	signer, err := loadOrGenerateHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading inspector host key")
	}

	s := &Server{cfg: cfg}
	s.ssh = &ssh.Server{
		Addr:    cfg.Addr,
		Handler: s.handleSession,
		PasswordHandler: func(_ ssh.Context, password string) bool {
			return verifyPassword(password, cfg.PasswordHash)
		},
	}
	s.ssh.AddHostKey(signer)
	return s, nil
}

// ListenAndServe blocks serving inspector sessions until the listener
// fails or is closed.
func (s *Server) ListenAndServe() error {
	log.Printf("inspector: serving on %q", s.cfg.Addr)
	return s.ssh.ListenAndServe()
}

// Close stops accepting new inspector sessions.
func (s *Server) Close() error {
	return s.ssh.Close()
}

func (s *Server) handleSession(sess ssh.Session) {
	t := term.NewTerminal(sess, "inspector> ")
	fmt.Fprintln(t, "connected -- type `help` for a command list")
	for {
		line, err := t.ReadLine()
		if err != nil {
			return
		}
		if err := dispatch(t, line); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			fmt.Fprintf(t, "error: %v\n", err)
		}
	}
}
