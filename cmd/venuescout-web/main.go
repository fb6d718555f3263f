package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reservedai/venuescout/internal/catalog"
	"github.com/reservedai/venuescout/internal/catalog/postgres"
	"github.com/reservedai/venuescout/internal/catalog/sqlite"
	"github.com/reservedai/venuescout/internal/config"
	"github.com/reservedai/venuescout/internal/llm"
	"github.com/reservedai/venuescout/internal/mail"
	"github.com/reservedai/venuescout/internal/recommend"
	"github.com/reservedai/venuescout/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize the venue catalog store
	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize catalog store: %v", err)
	}
	defer store.Close()

	// Build LLM providers from config
	generator, err := llm.NewTextGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize text provider: %v", err)
	}
	embedder, err := llm.NewEmbeddingGenerator(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize embedding provider: %v", err)
	}

	engine := recommend.NewEngine(store, embedder, generator)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm up venue embeddings so the first request does not pay for the
	// whole catalog. Failure here is not fatal; the engine retries lazily.
	if _, err := engine.EnsureEmbeddings(ctx); err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			log.Printf("Warning: venue catalog is empty, recommendations will fail until it is populated")
		} else {
			log.Printf("Warning: embedding warmup failed: %v", err)
		}
	}

	handlers := server.NewAPIHandlers(engine)

	// Wire the optional inquiry mailer
	if cfg.Mail.Enabled {
		mailer, err := mail.NewGmailMailer(mail.GmailConfig{
			AccessToken: cfg.Mail.AccessToken,
			FromAddress: cfg.Mail.FromAddress,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Gmail mailer: %v", err)
		}
		composer := mail.NewComposer(generator, cfg.Mail.SenderName, cfg.Mail.FromAddress)
		checker := mail.NewStatusChecker(mailer, generator)
		handlers.SetMailComponents(composer, mailer, checker)
		log.Printf("Inquiry mailer enabled, sending as %s", cfg.Mail.FromAddress)
	}

	addr, err := server.Start(ctx, cfg, handlers)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("VenueScout API running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// newStore selects the catalog backend from config. The sqlite store, when
// empty, is bootstrapped from the configured CSV file if one exists.
func newStore(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Catalog.Engine {
	case "postgres":
		return postgres.NewStore(cfg.Catalog.PostgresDSN)
	case "csv":
		return catalog.NewCSVStore(cfg.Catalog.CSVPath), nil
	default:
		store, err := sqlite.NewStore(cfg.Catalog.DataPath)
		if err != nil {
			return nil, err
		}
		if err := bootstrapFromCSV(store, cfg); err != nil {
			log.Printf("Warning: CSV bootstrap skipped: %v", err)
		}
		return store, nil
	}
}

// bootstrapFromCSV imports the CSV catalog into an empty sqlite store so a
// fresh install works from the original on-disk format.
func bootstrapFromCSV(store *sqlite.Store, cfg *config.Config) error {
	ctx := context.Background()

	count, err := store.Count(ctx)
	if err != nil || count > 0 {
		return err
	}

	if _, err := os.Stat(cfg.Catalog.CSVPath); err != nil {
		return nil // no CSV to import
	}

	venues, err := catalog.NewCSVStore(cfg.Catalog.CSVPath).Load(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalog) {
			return nil
		}
		return err
	}

	if err := store.Import(ctx, venues, cfg.LLM.EmbeddingModel); err != nil {
		return err
	}
	log.Printf("Imported %d venues from %s", len(venues), cfg.Catalog.CSVPath)
	return nil
}
