package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/frigosur/backoffice/internal/catalog"
	"github.com/frigosur/backoffice/internal/clientes"
	"github.com/frigosur/backoffice/internal/config"
	"github.com/frigosur/backoffice/internal/facturas"
	"github.com/frigosur/backoffice/internal/httpx"
	kafkax "github.com/frigosur/backoffice/internal/kafka"
	"github.com/frigosur/backoffice/internal/pedidos"
	"github.com/frigosur/backoffice/internal/postgres"
	"github.com/frigosur/backoffice/internal/redisx"
	"github.com/frigosur/backoffice/internal/stock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.ServiceName)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, uno por topic
	pCreados := kafkax.NewProducer(cfg.KafkaBrokers, pedidos.TopicPedidoCreado, 1024)
	pCreados.Start(ctx)
	pAnulados := kafkax.NewProducer(cfg.KafkaBrokers, pedidos.TopicPedidoAnulado, 1024)
	pAnulados.Start(ctx)
	pFacturas := kafkax.NewProducer(cfg.KafkaBrokers, pedidos.TopicFacturaIngresada, 1024)
	pFacturas.Start(ctx)

	// Repos
	catalogo := &catalog.Repo{DB: db}
	stockRepo := &stock.Repo{DB: db, Catalogo: catalogo}
	clientesRepo := &clientes.Repo{DB: db}
	pedidosRepo := &pedidos.Repo{DB: db}
	facturasRepo := &facturas.Repo{DB: db}

	// Handlers
	router := httpx.NewRouter()
	(&httpx.PedidosHandler{
		Repo:     pedidosRepo,
		Catalogo: catalogo,
		Stock:    stockRepo,
		Clientes: clientesRepo,
		Creados:  pCreados,
		Anulados: pAnulados,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}).Register(router)
	(&httpx.CatalogHandler{Repo: catalogo}).Register(router)
	(&httpx.StockHandler{Repo: stockRepo, Redis: rdb}).Register(router)
	(&httpx.ClientesHandler{Repo: clientesRepo}).Register(router)
	(&httpx.FacturasHandler{
		Repo:     facturasRepo,
		Ingresos: pFacturas,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreados.Close()
	pAnulados.Close()
	pFacturas.Close()
	cancel()
	pCreados.WaitClosed()
	pAnulados.WaitClosed()
	pFacturas.WaitClosed()
}
