package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rafflebot/internal/domain"
	"rafflebot/internal/domain/entities"
)

// memJournal is an in-memory ParticipantJournal with optional fault
// injection on Append.
type memJournal struct {
	mu        sync.Mutex
	records   []entities.Participant
	appendErr error
}

func (j *memJournal) Append(ctx context.Context, p entities.Participant) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.appendErr != nil {
		return j.appendErr
	}
	j.records = append(j.records, p)
	return nil
}

func (j *memJournal) ReadAll(ctx context.Context) ([]entities.Participant, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]entities.Participant, len(j.records))
	copy(out, j.records)
	return out, nil
}

func (j *memJournal) Close() error { return nil }

func newReadyRegistry(t *testing.T, journal *memJournal) *RegistryService {
	t.Helper()
	registry := NewRegistryService(journal)
	require.NoError(t, registry.Initialize(context.Background()))
	return registry
}

func TestRegisterAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	registry := newReadyRegistry(t, &memJournal{})

	for i := 1; i <= 5; i++ {
		p, err := registry.Register(ctx, fmt.Sprintf("user%d@example.com", i))
		require.NoError(t, err)
		assert.Equal(t, uint(i), p.ID)
	}
}

func TestRegisterNormalizesAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	journal := &memJournal{}
	registry := newReadyRegistry(t, journal)

	first, err := registry.Register(ctx, "  A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", first.Email)

	// Même email sous une autre casse: refusé, aucune mutation.
	_, err = registry.Register(ctx, "a@X.COM")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	assert.Len(t, registry.ListAll(ctx), 1)
	assert.Len(t, journal.records, 1)
}

func TestRegisterRejectsInvalidEmails(t *testing.T) {
	ctx := context.Background()
	journal := &memJournal{}
	registry := newReadyRegistry(t, journal)

	for _, email := range []string{"", "plainaddress", "no-dot@domain", "no-at.domain", "two words@x.com"} {
		_, err := registry.Register(ctx, email)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail, "email %q", email)
	}
	assert.Empty(t, journal.records)
}

func TestRegisterAppendFailureLeavesRegistryConsistent(t *testing.T) {
	ctx := context.Background()
	journal := &memJournal{}
	registry := newReadyRegistry(t, journal)

	_, err := registry.Register(ctx, "a@x.com")
	require.NoError(t, err)

	journal.appendErr = errors.New("disque plein")
	_, err = registry.Register(ctx, "b@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDuplicateEmail)

	// Ni visible en lecture, ni dans le journal, et l'id n'est pas brûlé.
	assert.Len(t, registry.ListAll(ctx), 1)
	assert.Len(t, journal.records, 1)

	journal.appendErr = nil
	p, err := registry.Register(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint(2), p.ID)
}

func TestInitializeReplaysJournal(t *testing.T) {
	ctx := context.Background()
	journal := &memJournal{}
	registry := newReadyRegistry(t, journal)

	_, err := registry.Register(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = registry.Register(ctx, "b@x.com")
	require.NoError(t, err)
	before := registry.ListAll(ctx)

	// Simule un redémarrage: nouveau registre sur le même journal.
	restarted := NewRegistryService(journal)
	require.NoError(t, restarted.Initialize(ctx))
	assert.Equal(t, before, restarted.ListAll(ctx))

	// L'attribution des ids reprend là où elle s'était arrêtée.
	p, err := restarted.Register(ctx, "c@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint(3), p.ID)
}

func TestInitializeRejectsCorruptHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email", func(t *testing.T) {
		journal := &memJournal{records: []entities.Participant{
			{ID: 1, Email: "a@x.com"},
			{ID: 2, Email: "a@x.com"},
		}}
		err := NewRegistryService(journal).Initialize(ctx)
		assert.ErrorIs(t, err, domain.ErrCorruptJournal)
	})

	t.Run("gapped ids", func(t *testing.T) {
		// Journal trafiqué: 1 puis 3. Accepter reviendrait à
		// réattribuer l'id 3 au prochain enregistrement.
		journal := &memJournal{records: []entities.Participant{
			{ID: 1, Email: "a@x.com"},
			{ID: 3, Email: "b@x.com"},
		}}
		err := NewRegistryService(journal).Initialize(ctx)
		assert.ErrorIs(t, err, domain.ErrCorruptJournal)
	})

	t.Run("ids out of order", func(t *testing.T) {
		journal := &memJournal{records: []entities.Participant{
			{ID: 2, Email: "a@x.com"},
			{ID: 1, Email: "b@x.com"},
		}}
		err := NewRegistryService(journal).Initialize(ctx)
		assert.ErrorIs(t, err, domain.ErrCorruptJournal)
	})
}

func TestPickRandom(t *testing.T) {
	ctx := context.Background()
	registry := newReadyRegistry(t, &memJournal{})

	_, err := registry.PickRandom(ctx)
	assert.ErrorIs(t, err, domain.ErrEmptyRegistry)

	only, err := registry.Register(ctx, "a@x.com")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		winner, err := registry.PickRandom(ctx)
		require.NoError(t, err)
		assert.Equal(t, *only, *winner)
	}

	_, err = registry.Register(ctx, "b@x.com")
	require.NoError(t, err)
	_, err = registry.Register(ctx, "c@x.com")
	require.NoError(t, err)

	// Chaque inscrit doit pouvoir sortir du tirage.
	seen := map[uint]int{}
	for i := 0; i < 300; i++ {
		winner, err := registry.PickRandom(ctx)
		require.NoError(t, err)
		seen[winner.ID]++
	}
	assert.Len(t, seen, 3)
}

func TestConcurrentRegistrations(t *testing.T) {
	ctx := context.Background()
	journal := &memJournal{}
	registry := newReadyRegistry(t, journal)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = registry.Register(ctx, fmt.Sprintf("user%d@example.com", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "registration %d", i)
	}

	participants := registry.ListAll(ctx)
	require.Len(t, participants, n)

	// Ids 1..n sans trou ni doublon, dans l'ordre d'enregistrement.
	for i, p := range participants {
		assert.Equal(t, uint(i+1), p.ID)
	}

	// Le journal contient exactement la même histoire.
	records, err := journal.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, participants, records)
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	registry := newReadyRegistry(t, &memJournal{})

	a, err := registry.Register(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint(1), a.ID)

	b, err := registry.Register(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint(2), b.ID)

	_, err = registry.Register(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	assert.Equal(t, []entities.Participant{
		{ID: 1, Email: "a@x.com"},
		{ID: 2, Email: "b@x.com"},
	}, registry.ListAll(ctx))

	winner, err := registry.PickRandom(ctx)
	require.NoError(t, err)
	assert.Contains(t, []uint{1, 2}, winner.ID)
}

func TestOperationsPanicBeforeInitialize(t *testing.T) {
	registry := NewRegistryService(&memJournal{})
	assert.Panics(t, func() { registry.ListAll(context.Background()) })
}
