package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/google/uuid"

	"whiteboard/internal/config"
	"whiteboard/internal/logging"
	"whiteboard/internal/prefs"
	"whiteboard/internal/remote"
	"whiteboard/internal/session"
	"whiteboard/internal/ui"
)

const appID = "io.github.whiteboard"

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: user config dir)")
	headless := flag.Bool("headless", false, "serve the board to browsers without opening a window")
	listen := flag.String("listen", "", "address for the browser surface; enables it on the desktop")
	discover := flag.Duration("discover", 0, "list boards advertised on the LAN for this long, then exit")
	debug := flag.Bool("debug", false, "log per-event detail")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := logging.For("main")

	if *discover > 0 {
		if err := runDiscover(*discover); err != nil {
			log.Error("discover", "err", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Remote.Listen = *listen
	}

	if *headless {
		err = runHeadless(cfg)
	} else {
		err = runDesktop(cfg, *listen != "")
	}
	if err != nil {
		log.Error("exit", "err", err)
		os.Exit(1)
	}
}

func runDesktop(cfg *config.Config, serve bool) error {
	a := app.NewWithID(appID)
	s, err := session.Open(prefs.NewFyne(a.Preferences()), *cfg)
	if err != nil {
		return err
	}

	if serve {
		stop, err := startRemote(cfg, s, remote.DispatcherFunc(fyne.Do), remote.Options{})
		if err != nil {
			return err
		}
		defer stop()
	}

	ui.RunApp(a, s, cfg)
	return nil
}

func runHeadless(cfg *config.Config) error {
	storage, err := prefs.OpenFile(cfg.StoragePath())
	if err != nil {
		return err
	}
	s, err := session.Open(storage, *cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := session.NewLoop(64)
	stop, err := startRemote(cfg, s, loop, remote.Options{Resize: true})
	if err != nil {
		return err
	}
	defer stop()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return s.Close()
}

// startRemote serves the browser surface and advertises it. The returned
// func shuts both down.
func startRemote(cfg *config.Config, s *session.Session, d remote.Dispatcher, opts remote.Options) (func(), error) {
	log := logging.For("main")

	ln, err := net.Listen("tcp", cfg.Remote.Listen)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Remote.Listen, err)
	}
	srv := &http.Server{
		Handler:           remote.NewServer(s, d, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("browser surface stopped", "err", err)
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	ip, err := remote.OutgoingIP()
	if err != nil {
		ip = "localhost"
	}
	log.Info("browser surface listening", "url", remote.ShareURL(ip, port))

	var withdraw func() error
	if cfg.Remote.Advertise {
		zone, err := remote.Advertise(port, uuid.NewString())
		if err != nil {
			log.Warn("mdns advertise failed", "err", err)
		} else {
			withdraw = zone.Shutdown
		}
	}

	return func() {
		if withdraw != nil {
			withdraw()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}

func runDiscover(timeout time.Duration) error {
	boards, err := remote.Browse(timeout)
	for _, b := range boards {
		fmt.Printf("%s\thttp://%s/\t%s\n", b.Name, b.Addr, b.ID)
	}
	return err
}
