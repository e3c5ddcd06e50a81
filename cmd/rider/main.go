package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/config"
	rideEvents "github.com/ridecab/service-ride/internal/events"
	"github.com/ridecab/service-ride/internal/platform/logger"
	"github.com/ridecab/service-ride/internal/platform/requesting"
	"github.com/ridecab/service-ride/internal/platform/sched"
	"github.com/ridecab/service-ride/internal/rider/authclient"
	"github.com/ridecab/service-ride/internal/rider/booking"
	"github.com/ridecab/service-ride/internal/rider/mapview"
	"github.com/ridecab/service-ride/internal/rider/search"
	"github.com/ridecab/service-ride/internal/rider/shell"
)

const clientName = "rider-client"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, clientName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := requesting.NewClient(log, cfg.Rider.RequestTimeout)
	accounts := authclient.New(httpClient, cfg.Rider.APIBaseURL, log)

	var notifier booking.Notifier
	if len(cfg.KafkaConfig.Brokers) > 0 {
		producer := rideEvents.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		notifier = rideEvents.NewRideNotifier(producer, clientName, log)
	}

	session := shell.New(shell.Deps{
		Clock:    sched.NewReal(),
		Auth:     accounts,
		Searcher: search.NewHTTPClient(httpClient, cfg.Rider.APIBaseURL),
		Feed:     mapview.NewHTTPFeed(httpClient, cfg.Rider.APIBaseURL),
		Notifier: notifier,
	}, shell.Config{
		NoticeWindow:   cfg.Rider.NoticeWindow,
		SelectionDelay: cfg.Rider.SelectionDelay,
		Booking: booking.Config{
			Delay:         cfg.Rider.BookingDelay,
			DisplayWindow: cfg.Rider.DisplayWindow,
		},
		Map: mapview.Config{
			PollInterval:      cfg.Rider.PollInterval,
			ClusterMeters:     cfg.Rider.ClusterMeters,
			DisableClustering: !cfg.Rider.Clustering,
		},
	}, log)
	defer session.Close()

	session.Start(ctx)
	log.Info("rider session started", zap.String("api", cfg.Rider.APIBaseURL))

	c := newConsole(session, accounts, os.Stdout)
	c.println(helpText)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || !c.exec(ctx, line) {
				return
			}
		}
	}
}
