package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"service-marketplace/api"
	"service-marketplace/assignment"
	"service-marketplace/auth"
	"service-marketplace/cache"
	"service-marketplace/config"
	"service-marketplace/database"
	"service-marketplace/geo"
	"service-marketplace/matching"
	"service-marketplace/models"
	"service-marketplace/notify"
	"service-marketplace/quotes"
	"service-marketplace/store"
)

func main() {
	// Initialize configuration
	config.InitConfig()

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal(err)
	}

	// Initialize Redis
	if err := cache.InitRedis(); err != nil {
		log.Fatal(err)
	}

	vendors := store.NewVendorStore(database.DB)
	requests := store.NewRequestStore(database.DB)
	quoteStore := store.NewQuoteStore(database.DB)
	reviews := store.NewReviewStore(database.DB)
	notifications := store.NewNotificationStore(database.DB)

	cells := cache.NewVendorCells(cache.Rdb)

	index := geo.NewRequestIndex()
	if err := rebuildIndex(index, requests); err != nil {
		log.Fatal(err)
	}

	registry := notify.NewRegistry()
	dispatcher := notify.NewDispatcher(notifications, registry)

	smtp := config.Cfg.SMTP
	var mailer assignment.Mailer
	if smtp.Host != "" {
		mailer = notify.NewEmailSender(smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.From)
	} else {
		log.Println("SMTP not configured; completion-code emails disabled.")
	}

	ttl, err := time.ParseDuration(config.Cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("Invalid auth token TTL: %v", err)
	}
	tokens := auth.NewTokenProvider(config.Cfg.Auth.JWTSecret, ttl)

	a := &api.API{
		Vendors:       vendors,
		Requests:      requests,
		Quotes:        quoteStore,
		Reviews:       reviews,
		Notifications: notifications,
		Cells:         cells,
		Index:         index,
		Matcher:       &matching.Matcher{Cells: cells, Requests: requests, Index: index},
		Gate: &assignment.Gate{
			Vendors:  vendors,
			Requests: requests,
			Notify:   dispatcher,
			Mail:     mailer,
			Cells:    cells,
			Index:    index,
		},
		Ledger: &quotes.Ledger{
			Vendors:  vendors,
			Quotes:   quoteStore,
			Requests: requests,
			Notify:   dispatcher,
		},
		Registry: registry,
		Tokens:   tokens,
		Auth:     auth.NewMiddleware(tokens),
	}

	// Register routes
	router := a.RegisterRoutes()

	// Start the server
	addr := config.Cfg.HTTP.Addr
	log.Printf("Server started on %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}

// rebuildIndex loads every open request into the spatial index at boot.
func rebuildIndex(index *geo.RequestIndex, requests *store.RequestStore) error {
	open := []string{
		models.StatusPending, models.StatusQuoted,
		models.StatusVendorReview, models.StatusAdminReview,
		models.StatusAccepted, models.StatusDone,
	}
	list, err := requests.ListOpen(context.Background(), "", open)
	if err != nil {
		return err
	}
	for _, req := range list {
		index.Insert(req.ID, req.Latitude, req.Longitude)
	}
	log.Printf("Spatial index rebuilt with %d open requests.", len(list))
	return nil
}
