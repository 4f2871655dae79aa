package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"btroute/internal/arbiter"
	"btroute/internal/config"
	"btroute/internal/daemon"
	"btroute/internal/event"
	"btroute/internal/ipc"
	"btroute/internal/logging"
	"btroute/internal/profiles"
	"btroute/internal/recency"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	fatal := func(msg string, err error) {
		logger.Error(msg, logging.Error(err))
		os.Exit(1)
	}

	store, err := recency.Open(cfg)
	if err != nil {
		fatal("open recency store", err)
	}

	bus := event.NewBus(cfg.Arbiter.QueueSize)
	defer bus.Shutdown()

	var services profiles.Services
	if cfg.BlueZ.Enabled {
		bluez, err := profiles.Connect(cfg, bus, logger)
		if err != nil {
			fatal("connect to bluez", err)
		}
		defer func() { _ = bluez.Close() }()
		services = bluez.Services(cfg)
	}

	mgr, err := arbiter.New(arbiter.Options{
		Config:   cfg,
		Bus:      bus,
		Logger:   logger,
		Services: services,
		Recency:  store,
	})
	if err != nil {
		fatal("create arbitration engine", err)
	}

	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		fatal("create daemon", err)
	}
	defer func() { _ = d.Close() }()

	ipcServer, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		fatal("start IPC server", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		fatal("start daemon", err)
	}

	<-ctx.Done()
	logger.Info("btrouted shutting down")
}
