package main

import (
	"context"
	"log"
	"os"

	"rafflebot/internal/adapters/telegram"
	"rafflebot/internal/application"
	"rafflebot/internal/config"
	"rafflebot/internal/infrastructure/database"
	"rafflebot/internal/infrastructure/i18n"
	"rafflebot/internal/infrastructure/journal"
	"rafflebot/internal/ports/output"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Erreur de configuration: %v", err)
	}

	ctx := context.Background()

	var participantJournal output.ParticipantJournal
	switch cfg.Storage {
	case config.StoragePostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatalf("❌ Erreur lors des migrations: %v", err)
		}
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Erreur lors de l'initialisation de la base de données: %v", err)
		}
		participantJournal = database.NewParticipantJournal(pool)
	default:
		fileJournal, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.Fatalf("❌ Erreur lors de l'ouverture du journal: %v", err)
		}
		participantJournal = fileJournal
	}
	defer participantJournal.Close()

	registry := application.NewRegistryService(participantJournal)
	if err := registry.Initialize(ctx); err != nil {
		log.Fatalf("❌ Erreur lors de la reconstruction du registre: %v", err)
	}

	translator := i18n.NewTranslator(cfg.DefaultLocale)

	bot := telegram.NewBot(cfg, registry, translator)
	if err := bot.Start(); err != nil {
		log.Printf("❌ Erreur lors du démarrage du bot: %v", err)
		os.Exit(1)
	}
}
