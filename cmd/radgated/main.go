package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"example.com/radgate/internal/capture"
	"example.com/radgate/internal/common"
	"example.com/radgate/internal/icd"
	"example.com/radgate/internal/ingest"
	"example.com/radgate/internal/render"
	"example.com/radgate/internal/server"
	"example.com/radgate/internal/stats"
)

func setupLogging(cfg config) error {
	if err := os.MkdirAll(cfg.Logs.Directory, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	logFile := filepath.Join(cfg.Logs.Directory, "radgated.log")
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxAge:     cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}
	sink := io.MultiWriter(os.Stdout, rotator)
	log.SetOutput(sink)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	common.SetOutput(sink)
	return nil
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config port)")
	capturePath := flag.String("capture", "", "record received chunks to this capture file (overrides config)")
	statsInterval := flag.Duration("stats-interval", time.Minute, "interval between statistics log lines (0 disables)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := setupLogging(cfg); err != nil {
		log.Fatalf("setup logging: %v", err)
	}
	if *capturePath != "" {
		cfg.Capture.Path = *capturePath
	}

	var capWriter *capture.Writer
	if cfg.Capture.Path != "" {
		capWriter, err = capture.NewWriter(cfg.Capture.Path)
		if err != nil {
			log.Fatalf("capture init: %v", err)
		}
		defer capWriter.Close()
		common.Logf("recording received chunks to %s", cfg.Capture.Path)
	}

	registry := icd.NewRegistry()
	aggregator := stats.New()
	srv := server.NewServer(server.Options{
		Stats:          aggregator,
		RecentCapacity: cfg.HTTP.RecentCapacity,
	})

	sink := func(o icd.DecodeOutcome) {
		aggregator.Record(o)
		srv.Submit(o)
		if o.Failure != nil {
			common.Logf("%s %s: %s (%s)", o.Frame.Transport, o.Frame.Addr, o.Failure.Kind, o.Failure.Reason)
			return
		}
		hdr := o.Msg.Header
		common.Logf("%s %s: %s seq=%d declared=%d got=%d bytes trailing=%d",
			o.Frame.Transport, o.Frame.Addr, hdr.Name(), hdr.SequenceNum,
			hdr.DeclaredLength, len(o.Frame.Bytes), len(o.Trailing))
	}

	opts := ingest.Options{
		Registry: registry,
		Sink:     sink,
		MaxFrame: cfg.MaxFrameBytes,
		Capture:  capWriter,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ingest.NewStreamReceiver(cfg.Stream.Addr, cfg.Stream.reconnect(), opts).Run(ctx)
	}()
	go func() {
		defer wg.Done()
		ingest.NewDatagramReceiver(cfg.Datagram.Bind, cfg.Datagram.RemotePort, opts).Run(ctx)
	}()

	if *statsInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(*statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					common.Logf("statistics\n%s", render.Statistics(aggregator.Snapshot()))
				}
			}
		}()
	}

	listenAddr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	if *addr != "" {
		listenAddr = *addr
	}
	httpServer := &http.Server{
		Addr:         listenAddr,
		Handler:      server.NewRouter(srv),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Printf("radgated listening on %s (stream %s, datagram %s)", listenAddr, cfg.Stream.Addr, cfg.Datagram.Bind)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-shutdown
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	wg.Wait()
	log.Printf("final statistics\n%s", render.Statistics(aggregator.Snapshot()))
	log.Println("radgated stopped")
}
