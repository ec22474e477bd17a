package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-telegram/bot/models"

	"rafflebot/internal/ports/input"
)

// secretTokenHeader is echoed by Telegram on every webhook delivery
// when a secret token was set at registration time.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// adminTokenHeader gates the HTTP admin surface.
const adminTokenHeader = "X-Admin-Token"

// sender is the outbound half of the Bot API the webhook needs.
type sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// webhookServer is the ingestion endpoint: it authenticates and
// decodes webhook deliveries and forwards messages to the Handler. A
// payload that fails to decode is rejected with 400 and never reaches
// the registry.
type webhookServer struct {
	handler       *Handler
	registry      input.RegistryUseCase
	client        sender
	webhookSecret string
	adminToken    string
}

func (s *webhookServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /participants", s.handleParticipants)
	return mux
}

func (s *webhookServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookSecret != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	var update models.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("⚠️ Mise à jour webhook illisible: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Telegram réessaie tant que la livraison ne répond pas 200: on
	// répond toujours 200 une fois la mise à jour décodée.
	w.WriteHeader(http.StatusOK)

	reply := s.handler.HandleMessage(r.Context(), update.Message)
	if reply == "" {
		return
	}
	if err := s.client.SendMessage(r.Context(), update.Message.Chat.ID, reply); err != nil {
		log.Printf("⚠️ Envoi de la réponse impossible (chat=%d): %v", update.Message.Chat.ID, err)
	}
}

func (s *webhookServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleParticipants is the admin surface: a JSON snapshot of the
// registry. Hidden entirely when no admin token is configured.
func (s *webhookServer) handleParticipants(w http.ResponseWriter, r *http.Request) {
	if s.adminToken == "" {
		http.NotFound(w, r)
		return
	}
	got := r.Header.Get(adminTokenHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminToken)) != 1 {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	type row struct {
		ID    uint   `json:"id"`
		Code  string `json:"code"`
		Email string `json:"email"`
	}
	participants := s.registry.ListAll(r.Context())
	rows := make([]row, len(participants))
	for i, p := range participants {
		rows[i] = row{ID: p.ID, Code: p.Code(), Email: p.Email}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rows); err != nil {
		log.Printf("⚠️ Encodage de la liste des participants: %v", err)
	}
}
