package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tankarena/archive"
	"tankarena/config"
	"tankarena/server"
)

var (
	serveAddr    string
	serveSeed    int64
	serveLogFile string
	serveConsole bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP + WebSocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, e.g. :8080 (overrides config)")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 0, "random seed for new rooms, 0 keeps config value")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "log file path (overrides config)")
	serveCmd.Flags().BoolVar(&serveConsole, "console", false, "also log to stderr")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveSeed != 0 {
		cfg.Game.Seed = serveSeed
	}
	if serveLogFile != "" {
		cfg.Log.File = serveLogFile
	}
	if serveConsole {
		cfg.Log.Console = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 使用 zap 日志库写入日志文件（lumberjack 滚动）
	if err := server.InitLogger(cfg.Log); err != nil {
		return err
	}
	defer server.SyncLogger()

	backend, err := openBackend(cfg.Archive)
	if err != nil {
		return err
	}
	var recorder archive.Recorder
	if backend != nil {
		recorder = archive.NewAsync(backend, archive.AsyncConfig{
			QueueSize: cfg.Archive.QueueSize,
			OnError: func(e archive.Entry, err error) {
				server.Log.Warnw("archive write failed", "room", e.RoomID, "turn", e.Turn, "err", err)
			},
		})
		defer func() {
			if err := recorder.Close(); err != nil {
				server.Log.Warnw("close archive", "err", err)
			}
		}()
		server.Log.Infow("turn archive enabled", "backend", cfg.Archive.Backend)
	}

	rooms := server.NewRoomManager(server.ManagerConfig{
		Game:     cfg.Game.ToGame(),
		Seed:     cfg.Game.Seed,
		Recorder: recorder,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewServer(cfg.Server, rooms).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		server.Log.Infof("TankArena listening on %s; open http://localhost%v/", cfg.Server.Addr, cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		server.Log.Errorf("listen: %v", err)
		return err
	case <-quit:
	}
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
