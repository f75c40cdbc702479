package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcp "github.com/nkohen/mcpcore"
	"github.com/nkohen/mcpcore/internal/filesystem"
	"github.com/nkohen/mcpcore/transport/stdio"
)

const connID = "stdio"

var (
	serveRoot     string
	serveLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a directory over stdio as an MCP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRoot, "root", ".", "Directory to serve as MCP resources")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return cfg.Build()
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(serveLogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	handler, err := filesystem.New(serveRoot)
	if err != nil {
		return fmt.Errorf("mcp-filesystem: %w", err)
	}

	srv, err := mcp.NewServerBuilder(
		mcp.Implementation{Name: "mcp-filesystem", Version: "0.1.0"},
		handler,
	).WithCapabilities(mcp.ServerCapabilities{
		Resources: &mcp.ResourcesCapability{ListChanged: true},
		Tools:     &mcp.ToolsCapability{},
	}).WithInstructions(fmt.Sprintf("Read-only access to %s", handler.Root)).
		WithLogger(logger).
		Build()
	if err != nil {
		return fmt.Errorf("mcp-filesystem: build server: %w", err)
	}

	transport := stdio.New(os.Stdin, nopWriteCloser{os.Stdout})
	if err := transport.Connect(cmd.Context()); err != nil {
		return fmt.Errorf("mcp-filesystem: connect transport: %w", err)
	}
	srv.AddConnection(connID, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	if watcher, err := startResourceWatcher(ctx, handler.Root, srv, logger); err != nil {
		logger.Warn("resource watcher disabled", zap.Error(err))
	} else {
		defer watcher.Close() //nolint:errcheck
	}

	logger.Info("mcp-filesystem serving", zap.String("root", handler.Root))
	return acceptLoop(ctx, transport, srv, logger)
}

// nopWriteCloser adapts os.Stdout (already an io.WriteCloser, but closing
// it on Disconnect would make subsequent log flushes fail) to a
// WriteCloser whose Close is a no-op.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func acceptLoop(ctx context.Context, t *stdio.Transport, srv *mcp.Server, logger *zap.Logger) error {
	defer srv.RemoveConnection(connID, "transport closed")
	for {
		select {
		case <-ctx.Done():
			return t.Disconnect(context.Background())
		default:
		}

		msg, err := t.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("receive failed", zap.Error(err))
			return err
		}
		if msg == nil {
			return nil
		}

		reply, err := srv.HandleMessage(ctx, connID, msg)
		if err != nil {
			logger.Error("handle message failed", zap.Error(err))
			continue
		}
		if reply == nil {
			continue
		}
		if err := t.Send(ctx, reply); err != nil {
			logger.Error("send reply failed", zap.Error(err))
			return err
		}
	}
}

// startResourceWatcher watches root for filesystem changes and notifies
// the connected client via resources/list_changed, debounced so a burst
// of writes collapses into a single notification.
func startResourceWatcher(ctx context.Context, root string, srv *mcp.Server, logger *zap.Logger) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	go func() {
		var debounce *time.Timer
		notify := func() {
			if err := srv.NotifyResourcesChanged(ctx, connID); err != nil {
				logger.Debug("notify resources changed failed", zap.Error(err))
			}
		}
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, notify)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error", zap.Error(err))
			}
		}
	}()

	return watcher, nil
}
