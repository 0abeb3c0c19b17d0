package tui

import (
	"context"
	"errors"
	"hash/fnv"
	"log"
	"net"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bubbleteamw "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
)

const sshShutdownTimeout = 5 * time.Second

// SSHConfig holds the SSH server settings.
type SSHConfig struct {
	Bind        string
	Port        string
	HostKeyPath string
}

// SSHServer serves the TUI over SSH using wish.
type SSHServer struct {
	server *ssh.Server
	addr   string
}

// NewSSHServer builds a wish server that hands each SSH session its own
// TUI instance. The base services are shared; the per-session user
// identity comes from the SSH username.
func NewSSHServer(cfg SSHConfig, base Services) (*SSHServer, error) {
	addr := net.JoinHostPort(cfg.Bind, cfg.Port)

	srv, err := wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithMiddleware(
			bubbleteamw.Middleware(makeTeaHandler(base)),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return nil, err
	}

	return &SSHServer{server: srv, addr: addr}, nil
}

// Addr returns the listen address.
func (s *SSHServer) Addr() string { return s.addr }

// Start serves SSH sessions until the context is cancelled.
func (s *SSHServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Printf("SSH TUI listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), sshShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func makeTeaHandler(base Services) bubbleteamw.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		svc := base
		svc.Username = sess.User()
		svc.UserID = sshUserID(sess.User())

		app := NewAppModel(svc)

		pty, _, _ := sess.Pty()
		if pty.Window.Width > 0 {
			app.SetSize(pty.Window.Width, pty.Window.Height)
		}

		return app, []tea.ProgramOption{tea.WithAltScreen()}
	}
}

// sshUserID derives a stable per-user ID from the SSH username so advisor
// chat history stays separate between users. The offset applied by
// Services.ChatID keeps these IDs out of the Telegram chat ID space.
func sshUserID(username string) int64 {
	h := fnv.New32a()
	h.Write([]byte(username))
	return int64(h.Sum32())
}
