// README: Entry point; loads config, wires stores and services, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridepass/internal/ai"
	"ridepass/internal/config"
	httptransport "ridepass/internal/http"
	"ridepass/internal/http/handlers"
	"ridepass/internal/infra"
	"ridepass/internal/maps"
	"ridepass/internal/modules/aiusage"
	"ridepass/internal/modules/child"
	"ridepass/internal/modules/location"
	"ridepass/internal/modules/pricing"
	"ridepass/internal/modules/schedule"
	"ridepass/internal/modules/ticket"
	"ridepass/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		verifier infra.TokenVerifier
		notifier ticket.Notifier = ticket.LogNotifier{}
	)
	if cfg.Firebase.ProjectID != "" {
		app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			log.Fatalf("firebase init: %v", err)
		}
		if verifier, err = infra.NewFirebaseVerifier(ctx, app); err != nil {
			log.Fatalf("firebase auth: %v", err)
		}
		if msg, err := app.Messaging(ctx); err != nil {
			log.Printf("firebase messaging unavailable, logging notifications: %v", err)
		} else {
			notifier = ticket.NewFCMNotifier(msg)
		}
	} else {
		log.Printf("RIDEPASS_FIREBASE_PROJECT_ID not set; accepting dev HS256 tokens")
		verifier = infra.NewJWTVerifier(cfg.Auth.JWTSecret)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	var (
		estimator maps.Estimator       = maps.PlaceholderEstimator{}
		searcher  maps.AddressSearcher = maps.PlaceholderSearcher{}
	)
	if cfg.Maps.APIKey != "" {
		if routes, err := maps.NewRouteService(cfg.Maps.APIKey); err != nil {
			log.Printf("maps directions disabled: %v", err)
		} else {
			estimator = maps.FallbackEstimator{Primary: routes, Secondary: maps.PlaceholderEstimator{}}
		}
		if places, err := maps.NewPlacesService(cfg.Maps.APIKey); err != nil {
			log.Printf("maps places disabled: %v", err)
		} else {
			searcher = places
		}
	}

	var parser ai.IntentParser
	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Printf("assistant disabled: %v", err)
		} else {
			defer gemini.Close()
			parser = gemini
		}
	}

	pricingStore := pricing.NewStore(dbPool)
	if cfg.CatalogFile != "" {
		raw, err := os.ReadFile(cfg.CatalogFile)
		if err != nil {
			log.Fatalf("read catalog: %v", err)
		}
		if _, err := pricing.ImportCatalog(ctx, pricingStore, raw, cfg.Currency); err != nil {
			log.Fatalf("import catalog: %v", err)
		}
	}
	pricingSvc := pricing.NewService(pricingStore)
	scheduleSvc := schedule.NewService(
		schedule.NewStore(dbPool),
		schedule.NewDraftStore(redisClient),
		pricingSvc,
		estimator,
		cfg.Drafts.TTL,
	)
	ticketSvc := ticket.NewService(ticket.NewStore(dbPool), pricingSvc, scheduleSvc, ticket.SimulatedGateway{}, notifier)
	locationSvc := location.NewService(location.NewStore(dbPool))
	childSvc := child.NewService(child.NewStore(dbPool))

	deps := httptransport.Deps{
		Verifier:    verifier,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		MaxInflight: cfg.HTTP.MaxInflight,
		Tickets:     handlers.NewTicketHandler(pricingSvc, ticketSvc),
		Schedules:   handlers.NewScheduleHandler(scheduleSvc),
		Locations:   handlers.NewLocationHandler(locationSvc, searcher, estimator),
		Children:    handlers.NewChildHandler(childSvc),
	}
	if parser != nil {
		planner := service.NewBookingPlanner(parser, locationSvc, scheduleSvc)
		deps.Assistant = handlers.NewAssistantHandler(planner, aiusage.NewService(aiusage.NewStore(dbPool)))
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("ridepass api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
