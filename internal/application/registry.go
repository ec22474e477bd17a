package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"rafflebot/internal/domain"
	"rafflebot/internal/domain/entities"
	"rafflebot/internal/ports/input"
	"rafflebot/internal/ports/output"
)

var _ input.RegistryUseCase = (*RegistryService)(nil)

// RegistryService is the sole authority over participant state. It
// keeps two representations of the same history: the durable journal
// (source of truth, replayed at startup) and an in-memory index
// serving all reads. A single mutex serializes every operation so
// that callers only ever observe the full pre-state or the full
// post-state of any registration.
type RegistryService struct {
	journal output.ParticipantJournal

	mu          sync.Mutex
	byEmail     map[string]int // email normalisé -> position dans ordered
	ordered     []entities.Participant
	nextID      uint
	initialized bool
}

// NewRegistryService creates an uninitialized registry over the given
// journal. Initialize must be called before any other operation.
func NewRegistryService(journal output.ParticipantJournal) *RegistryService {
	return &RegistryService{
		journal: journal,
		byEmail: make(map[string]int),
	}
}

// Initialize replays the journal and rebuilds the index. It runs at
// most once; the registry accepts no other operation before it has
// completed. A journal that exists but cannot be fully trusted
// (malformed record, id out of order, duplicate email) aborts startup:
// the registry never serves from a partially rebuilt index.
func (s *RegistryService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return fmt.Errorf("registry: déjà initialisé")
	}

	records, err := s.journal.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("relecture du journal: %w", err)
	}

	for _, p := range records {
		// Les ids sont attribués séquentiellement et jamais retirés:
		// toute histoire non contiguë (trou, doublon, désordre) est
		// corrompue — nextID réattribuerait un id existant sinon.
		if want := uint(len(s.ordered)) + 1; p.ID != want {
			return fmt.Errorf("%w: id %d, attendu %d", domain.ErrCorruptJournal, p.ID, want)
		}
		if _, exists := s.byEmail[p.Email]; exists {
			return fmt.Errorf("%w: email en double %q", domain.ErrCorruptJournal, p.Email)
		}
		s.byEmail[p.Email] = len(s.ordered)
		s.ordered = append(s.ordered, p)
	}

	s.nextID = uint(len(s.ordered)) + 1
	s.initialized = true
	return nil
}

// Register normalizes and validates the email, then runs the
// check-append-insert sequence under the registry lock. The journal
// append completes (durably) before the participant becomes visible
// to reads: after a crash the index can always be rebuilt to exactly
// what readers were shown.
func (s *RegistryService) Register(ctx context.Context, email string) (*entities.Participant, error) {
	normalized := entities.NormalizeEmail(email)
	if !entities.ValidEmail(normalized) {
		return nil, domain.ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeInitialized()

	// La validation a eu lieu hors verrou: l'unicité doit être
	// revérifiée ici, sinon deux appels concurrents avec le même
	// email passeraient tous les deux.
	if _, exists := s.byEmail[normalized]; exists {
		return nil, domain.ErrDuplicateEmail
	}

	participant := entities.Participant{
		ID:    s.nextID,
		Email: normalized,
	}

	// Append avant insertion dans l'index: un enregistrement visible
	// en lecture est toujours récupérable après un crash. En cas
	// d'échec d'écriture, aucune mutation: journal et index restent
	// d'accord, l'id n'est pas consommé.
	if err := s.journal.Append(ctx, participant); err != nil {
		return nil, fmt.Errorf("écriture du journal: %w", err)
	}

	s.byEmail[normalized] = len(s.ordered)
	s.ordered = append(s.ordered, participant)
	s.nextID++

	return &participant, nil
}

// ListAll returns a snapshot of all participants in registration
// order. The copy is taken under the lock: no caller can observe a
// participant mid-registration.
func (s *RegistryService) ListAll(ctx context.Context) []entities.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeInitialized()

	snapshot := make([]entities.Participant, len(s.ordered))
	copy(snapshot, s.ordered)
	return snapshot
}

// PickRandom draws one participant uniformly among all currently
// registered. The draw happens over a length-stable view held under
// the lock, so every participant registered at call time has equal
// probability.
func (s *RegistryService) PickRandom(ctx context.Context) (*entities.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeInitialized()

	if len(s.ordered) == 0 {
		return nil, domain.ErrEmptyRegistry
	}
	winner := s.ordered[rand.IntN(len(s.ordered))]
	return &winner, nil
}

// mustBeInitialized is called with the lock held. Using the registry
// before Initialize is a wiring bug, not a runtime condition.
func (s *RegistryService) mustBeInitialized() {
	if !s.initialized {
		panic("registry: utilisé avant Initialize")
	}
}
