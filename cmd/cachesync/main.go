package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/frigosur/backoffice/internal/cachesync"
	"github.com/frigosur/backoffice/internal/config"
	kafkax "github.com/frigosur/backoffice/internal/kafka"
	"github.com/frigosur/backoffice/internal/pedidos"
	"github.com/frigosur/backoffice/internal/redisx"
)

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &cachesync.Service{Redis: rdb}

	group := getenv("CACHESYNC_GROUP", "cachesync-svc")
	workers := mustAtoi(os.Getenv("CACHESYNC_WORKERS"), "4")

	// Un consumer por topic, mismo grupo y mismo handler.
	topics := []string{
		pedidos.TopicPedidoCreado,
		pedidos.TopicPedidoAnulado,
		pedidos.TopicFacturaIngresada,
	}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.Printf("cachesync consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			if err := cons.Start(ctx, svc.HandleEvento); err != nil {
				log.Printf("consumer exit (%s): %v", topic, err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumers...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
