package telegram

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-telegram/bot/models"

	"rafflebot/internal/domain"
	"rafflebot/internal/ports/input"
	"rafflebot/internal/ports/output"
)

// Handler routes decoded Telegram messages to registry use cases and
// renders the reply text. Sending is the caller's concern.
type Handler struct {
	registry   input.RegistryUseCase
	translator output.T
	adminID    int64
}

// NewHandler creates a Handler.
func NewHandler(registry input.RegistryUseCase, translator output.T, adminID int64) *Handler {
	return &Handler{
		registry:   registry,
		translator: translator,
		adminID:    adminID,
	}
}

// HandleMessage processes one inbound message and returns the reply
// text, or "" when no reply is warranted.
func (h *Handler) HandleMessage(ctx context.Context, msg *models.Message) string {
	if msg == nil || msg.Text == "" {
		return ""
	}

	locale := ""
	if msg.From != nil {
		locale = msg.From.LanguageCode
	}

	switch command(msg.Text) {
	case "/start":
		return h.translator.T(locale, "raffle.start", nil)
	case "/raffle":
		return h.handleRaffle(ctx, locale, msg)
	default:
		return h.handleRegister(ctx, locale, msg.Text)
	}
}

// handleRaffle draws a winner. Seul l'admin peut lancer le tirage.
func (h *Handler) handleRaffle(ctx context.Context, locale string, msg *models.Message) string {
	if msg.From == nil || h.adminID == 0 || msg.From.ID != h.adminID {
		return h.translator.T(locale, "command.unavailable", nil)
	}

	winner, err := h.registry.PickRandom(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyRegistry) {
			return h.translator.T(locale, "raffle.empty", nil)
		}
		log.Printf("❌ Tirage impossible: %v", err)
		return h.translator.T(locale, "command.unavailable", nil)
	}
	return h.translator.T(locale, "raffle.winner", map[string]any{"Code": winner.Code()})
}

// handleRegister treats any non-command text as a registration attempt.
func (h *Handler) handleRegister(ctx context.Context, locale, text string) string {
	participant, err := h.registry.Register(ctx, text)
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return h.translator.T(locale, "raffle.register.invalid", nil)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return h.translator.T(locale, "raffle.register.duplicate", nil)
	case err != nil:
		// Échec d'écriture durable: rien n'a été enregistré, on le dit.
		log.Printf("❌ Enregistrement impossible: %v", err)
		return h.translator.T(locale, "raffle.register.failed", nil)
	}
	return h.translator.T(locale, "raffle.register.success", map[string]any{"Code": participant.Code()})
}

// command extracts the leading bot command from text, dropping the
// optional "@BotName" suffix Telegram appends in group chats. Returns
// "" when the text is not a command.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}
