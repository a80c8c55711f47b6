package main

import (
	"handyman_bids/internal/http-server/handlers/api/bid"
	"handyman_bids/internal/http-server/handlers/api/customer"
	"handyman_bids/internal/http-server/handlers/api/ping"
	"handyman_bids/internal/storage/postgres"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := godotenv.Load()
	if err != nil {
		log.Error("Failed to load .env", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
	}

	connStr := os.Getenv("POSTGRES_CONN")
	storage, err := postgres.New(connStr)
	if err != nil {
		log.Error("Failed to connect to postgresql", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	router := chi.NewRouter()

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.New(log))
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customer.NewPostCustomer(log, storage))
			r.Get("/", customer.NewGetCustomers(log, storage))
		})
		r.Route("/bids", func(r chi.Router) {
			r.Post("/", bid.NewPostBid(log, storage))
			r.Get("/", bid.NewGetBids(log, storage))
			r.Put("/{bidId}/status", bid.NewPutBidStatus(log, storage))
			r.Get("/{bidId}/quote", bid.NewGetBidQuote(log, storage))
			r.Get("/{bidId}/email-link", bid.NewGetBidEmailLink(log, storage))
		})
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Error("failed to start the server")
		}
	}()

	log.Info("starting server", slog.String("addr", addr))
	<-done
	log.Info("server stopped")
}
