package journal

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"rafflebot/internal/domain"
	"rafflebot/internal/domain/entities"
	"rafflebot/internal/ports/output"
)

// header identifies the journal format. A file without it is not ours
// and is rejected wholesale.
const header = "rafflebot-journal/1"

var _ output.ParticipantJournal = (*FileJournal)(nil)

// FileJournal implements output.ParticipantJournal as an append-only
// text file: the header line followed by one "<id>\t<email>\n" record
// per committed registration. Every append is fsynced before
// returning. Human-inspectable, recoverable by sequential scan.
type FileJournal struct {
	path string
	file *os.File
}

// Open opens (or creates) the journal at path. A new file gets the
// header written and synced immediately so that an empty journal is
// distinguishable from a foreign file.
func Open(path string) (*FileJournal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("ouverture du journal %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat du journal %s: %w", path, err)
	}
	if info.Size() == 0 {
		if _, err := file.WriteString(header + "\n"); err != nil {
			file.Close()
			return nil, fmt.Errorf("écriture de l'en-tête: %w", err)
		}
		if err := file.Sync(); err != nil {
			file.Close()
			return nil, fmt.Errorf("sync de l'en-tête: %w", err)
		}
	}

	return &FileJournal{path: path, file: file}, nil
}

// Append writes one record and fsyncs before returning. The registry
// relies on this as its durability boundary.
func (j *FileJournal) Append(ctx context.Context, participant entities.Participant) error {
	record := strconv.FormatUint(uint64(participant.ID), 10) + "\t" + participant.Email + "\n"
	if _, err := j.file.WriteString(record); err != nil {
		return fmt.Errorf("append au journal: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("sync du journal: %w", err)
	}
	return nil
}

// ReadAll replays the whole journal in commit order.
//
// Politique de corruption: fail-closed. Un en-tête absent, une ligne
// mal formée ou un dernier enregistrement tronqué (pas de '\n' final,
// typique d'un crash en plein append) rejettent le fichier entier —
// on ne sert jamais un index partiellement fiable.
func (j *FileJournal) ReadAll(ctx context.Context) ([]entities.Participant, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, fmt.Errorf("lecture du journal %s: %w", j.path, err)
	}

	content := string(data)
	if !strings.HasSuffix(content, "\n") {
		return nil, fmt.Errorf("%w: enregistrement final tronqué", domain.ErrCorruptJournal)
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if lines[0] != header {
		return nil, fmt.Errorf("%w: en-tête inconnu %q", domain.ErrCorruptJournal, lines[0])
	}

	participants := make([]entities.Participant, 0, len(lines)-1)
	for n, line := range lines[1:] {
		id, email, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("%w: ligne %d mal formée", domain.ErrCorruptJournal, n+2)
		}
		parsed, err := strconv.ParseUint(id, 10, 32)
		if err != nil || parsed == 0 {
			return nil, fmt.Errorf("%w: id invalide ligne %d", domain.ErrCorruptJournal, n+2)
		}
		if !entities.ValidEmail(email) {
			return nil, fmt.Errorf("%w: email invalide ligne %d", domain.ErrCorruptJournal, n+2)
		}
		participants = append(participants, entities.Participant{
			ID:    uint(parsed),
			Email: email,
		})
	}
	return participants, nil
}

func (j *FileJournal) Close() error {
	return j.file.Close()
}
