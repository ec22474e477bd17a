package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-telegram/bot"

	"rafflebot/internal/config"
	"rafflebot/internal/ports/input"
	"rafflebot/internal/ports/output"
)

// Bot is the Telegram adapter: webhook ingestion on one side, Bot API
// replies on the other.
type Bot struct {
	config *config.Config
	api    *bot.Bot
	server *http.Server
}

// NewBot creates a Bot and wires ports: registry (use cases) ->
// handler -> webhook server.
func NewBot(cfg *config.Config, registry input.RegistryUseCase, translator output.T) *Bot {
	// Les mises à jour arrivent par webhook: pas de getMe au démarrage.
	api, err := bot.New(cfg.Token, bot.WithSkipGetMe())
	if err != nil {
		log.Fatal("❌ Erreur lors de la création de la session Bot API:", err)
	}

	handler := NewHandler(registry, translator, cfg.AdminID)

	ws := &webhookServer{
		handler:       handler,
		registry:      registry,
		client:        &apiSender{api: api},
		webhookSecret: cfg.WebhookSecret,
		adminToken:    cfg.AdminToken,
	}

	return &Bot{
		config: cfg,
		api:    api,
		server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           ws.routes(),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// apiSender adapts the SDK's parameter-struct API to the sender port.
type apiSender struct {
	api *bot.Bot
}

func (s *apiSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := s.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// Start runs the bot until interrupted.
func (b *Bot) Start() error {
	ctx := context.Background()

	if b.config.BaseURL != "" {
		url := strings.TrimSuffix(b.config.BaseURL, "/") + "/webhook"
		ok, err := b.api.SetWebhook(ctx, &bot.SetWebhookParams{
			URL:         url,
			SecretToken: b.config.WebhookSecret,
		})
		if err != nil {
			return fmt.Errorf("enregistrement du webhook: %w", err)
		}
		if !ok {
			return fmt.Errorf("enregistrement du webhook refusé par l'API")
		}
		log.Printf("✅ Webhook enregistré sur %s", url)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	fmt.Println("🤖 Bot en ligne ! Appuyez sur CTRL+C pour quitter.")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serveur webhook: %w", err)
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return b.server.Shutdown(shutdownCtx)
}
