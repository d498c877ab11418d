package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
	"github.com/pixil98/go-texter/internal/logfields"
)

// TelnetListener serves the console over telnet. Names typed at its prompt
// are never verified.
type TelnetListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))

	handler := &telnetHandler{
		cm:          l.cm,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), handler)

	done := make(chan struct{})
	defer close(done)

	// Shutdown closes the server and every open session.
	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			handler.Stop()
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "port", l.port)

	err := svr.ListenAndServe()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	cm          *ConnectionManager
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()
	defer func() {
		err := conn.Close()
		if err != nil {
			slog.DebugContext(h.connCtx, "closing telnet connection", logfields.Error(err))
		}
	}()

	ctx := h.connCtx
	slog.InfoContext(ctx, "telnet connection established", logfields.Listener("telnet"))

	h.cm.AcceptConnection(ctx, newCRLFConn(conn), Identity{})
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
