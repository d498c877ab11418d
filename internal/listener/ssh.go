package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/pixil98/go-texter/internal/logfields"
	"golang.org/x/crypto/ssh"
)

// SshListener serves the console over ssh. With authorized keys the login is
// key-verified; without them any login is accepted but never verified.
type SshListener struct {
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
	keys    AuthorizedKeys
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer, keys AuthorizedKeys) *SshListener {
	return &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
		keys:    keys,
	}
}

func (l *SshListener) serverConfig() *ssh.ServerConfig {
	config := &ssh.ServerConfig{}
	if len(l.keys) > 0 {
		config.PublicKeyCallback = l.keys.Check
	} else {
		config.NoClientAuth = true
	}
	config.AddHostKey(l.hostKey)
	return config
}

func (l *SshListener) Start(ctx context.Context) error {
	config := l.serverConfig()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "port", l.port, "key_auth", len(l.keys) > 0)

	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting ssh connection", logfields.Error(err))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) handleConnection(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer func() { _ = conn.Close() }()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", logfields.RemoteAddr(conn.RemoteAddr().String()), logfields.Error(err))
		return
	}
	defer func() { _ = sshConn.Close() }()

	id := identity(sshConn)
	slog.InfoContext(ctx, "ssh connection established",
		logfields.Listener("ssh"),
		logfields.RemoteAddr(conn.RemoteAddr().String()),
		logfields.User(id.Name),
		"verified", id.Verified,
	)

	// Unblocks the channel loop on shutdown.
	go func() {
		<-ctx.Done()
		_ = sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.ErrorContext(ctx, "accepting ssh channel", logfields.Error(err))
			continue
		}

		// Clients hold back input until the shell request is answered.
		shellReady := make(chan struct{})
		var shellOnce sync.Once
		go func(in <-chan *ssh.Request) {
			for req := range in {
				switch req.Type {
				case "pty-req":
					// No pty: the client keeps local echo and line editing.
					_ = req.Reply(false, nil)
				case "shell":
					_ = req.Reply(true, nil)
					shellOnce.Do(func() { close(shellReady) })
				default:
					_ = req.Reply(false, nil)
				}
			}
		}(requests)

		select {
		case <-shellReady:
		case <-ctx.Done():
			_ = ch.Close()
			continue
		}

		l.cm.AcceptConnection(ctx, newCRLFConn(ch), id)
		_ = ch.Close()
	}
}
