package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/bestiary/internal/errors"
)

// Note is the free text a user attached to one entity.
type Note struct {
	ID   int    `json:"id"`
	Text string `json:"note"`
}

// storedNote is the durable layout: ids are written as strings.
type storedNote struct {
	ID   json.RawMessage `json:"id"`
	Note string          `json:"note"`
}

// Notes maps entity ids to note text. Writes are synchronous; a failed write
// is logged and the in-memory change is kept.
type Notes struct {
	storage Storage
	logger  *zap.Logger

	mu    sync.Mutex
	notes map[int]string

	writeMu sync.Mutex
}

// NewNotes creates an empty notes store. Call Load to read the persisted notes.
func NewNotes(storage Storage, logger *zap.Logger) *Notes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notes{storage: storage, logger: logger, notes: make(map[int]string)}
}

// Load replaces the in-memory notes with the persisted ones. Both the array
// layout and a map keyed by id are accepted. A missing, unreadable or
// corrupt value yields no notes.
func (n *Notes) Load(ctx context.Context) {
	notes := make(map[int]string)

	raw, ok, err := n.storage.GetItem(ctx, NotesKey)
	switch {
	case err != nil:
		n.logger.Warn("notes load failed", zap.String("key", NotesKey), zap.Error(err))
	case ok:
		parsed, err := decodeNotes([]byte(raw))
		if err != nil {
			n.logger.Warn("notes value is corrupt", zap.String("key", NotesKey), zap.Error(err))
		} else {
			notes = parsed
		}
	}

	n.mu.Lock()
	n.notes = notes
	n.mu.Unlock()
}

// Get returns the note for id.
func (n *Notes) Get(id int) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	text, ok := n.notes[id]
	return text, ok
}

// All returns every note ordered by id.
func (n *Notes) All() []Note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sortedLocked()
}

// Set stores text for id after trimming surrounding whitespace. Blank text
// is rejected with a VALIDATION error and changes nothing.
func (n *Notes) Set(ctx context.Context, id int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.NewValidation("note", "note cannot be empty")
	}

	n.mu.Lock()
	n.notes[id] = text
	n.mu.Unlock()

	n.persist(ctx)
	return nil
}

// Clear removes the note for id. It reports whether a note existed.
func (n *Notes) Clear(ctx context.Context, id int) bool {
	n.mu.Lock()
	_, ok := n.notes[id]
	delete(n.notes, id)
	n.mu.Unlock()

	if ok {
		n.persist(ctx)
	}
	return ok
}

func (n *Notes) persist(ctx context.Context) {
	n.writeMu.Lock()
	defer n.writeMu.Unlock()

	n.mu.Lock()
	all := n.sortedLocked()
	n.mu.Unlock()

	stored := make([]storedNote, len(all))
	for i, note := range all {
		stored[i] = storedNote{ID: json.RawMessage(strconv.Quote(strconv.Itoa(note.ID))), Note: note.Text}
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		n.logger.Error("notes encode failed", zap.Error(err))
		return
	}

	if err := n.storage.SetItem(ctx, NotesKey, string(payload)); err != nil {
		n.logger.Warn("notes write failed", zap.String("key", NotesKey), zap.Error(err))
	}
}

func (n *Notes) sortedLocked() []Note {
	out := make([]Note, 0, len(n.notes))
	for id, text := range n.notes {
		out = append(out, Note{ID: id, Text: text})
	}
	slices.SortFunc(out, func(a, b Note) int { return a.ID - b.ID })
	return out
}

func decodeNotes(raw []byte) (map[int]string, error) {
	raw = bytes.TrimSpace(raw)
	notes := make(map[int]string)

	if len(raw) > 0 && raw[0] == '{' {
		var byID map[string]string
		if err := json.Unmarshal(raw, &byID); err != nil {
			return nil, err
		}
		for k, text := range byID {
			id, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("note id %q: %w", k, err)
			}
			if text = strings.TrimSpace(text); text != "" {
				notes[id] = text
			}
		}
		return notes, nil
	}

	var list []storedNote
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	for _, s := range list {
		id, err := parseNoteID(s.ID)
		if err != nil {
			return nil, err
		}
		if text := strings.TrimSpace(s.Note); text != "" {
			notes[id] = text
		}
	}
	return notes, nil
}

// parseNoteID accepts "7" and 7.
func parseNoteID(raw json.RawMessage) (int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(s)
	}
	var id int
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("note id %s: %w", raw, err)
	}
	return id, nil
}
