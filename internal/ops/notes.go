package ops

import (
	"bytes"
	"context"
	"html"
	"strconv"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/bestiary/internal/catalog"
	"github.com/hpungsan/bestiary/internal/errors"
	"github.com/hpungsan/bestiary/internal/prefs"
)

// NoteInput names the entity a note belongs to.
type NoteInput struct {
	ID int
}

// NoteOutput is a single note. HTML is the note rendered as Markdown.
type NoteOutput struct {
	ID   int    `json:"id"`
	Note string `json:"note"`
	HTML string `json:"html,omitempty"`
}

// GetNote returns the note for an entity, or NOT_FOUND if it has none.
func GetNote(ctx context.Context, store *catalog.Store, notes *prefs.Notes, input NoteInput) (*NoteOutput, error) {
	if err := requireEntity(store, input.ID); err != nil {
		return nil, err
	}
	text, ok := notes.Get(input.ID)
	if !ok {
		return nil, errors.NewNotFound("note:" + strconv.Itoa(input.ID))
	}
	return &NoteOutput{ID: input.ID, Note: text, HTML: RenderMarkdown(text)}, nil
}

// SetNoteInput contains parameters for the SetNote operation.
type SetNoteInput struct {
	ID   int
	Note string
}

// SetNote stores a trimmed note and returns it rendered. Blank text is a
// VALIDATION error.
func SetNote(ctx context.Context, store *catalog.Store, notes *prefs.Notes, input SetNoteInput) (*NoteOutput, error) {
	if err := requireEntity(store, input.ID); err != nil {
		return nil, err
	}
	if err := notes.Set(ctx, input.ID, input.Note); err != nil {
		return nil, err
	}
	text, _ := notes.Get(input.ID)
	return &NoteOutput{ID: input.ID, Note: text, HTML: RenderMarkdown(text)}, nil
}

// ClearNoteOutput reports whether a note was removed.
type ClearNoteOutput struct {
	ID      int  `json:"id"`
	Cleared bool `json:"cleared"`
}

// ClearNote removes the note for an entity. Clearing a missing note succeeds
// with Cleared false.
func ClearNote(ctx context.Context, store *catalog.Store, notes *prefs.Notes, input NoteInput) (*ClearNoteOutput, error) {
	if err := requireEntity(store, input.ID); err != nil {
		return nil, err
	}
	return &ClearNoteOutput{ID: input.ID, Cleared: notes.Clear(ctx, input.ID)}, nil
}

// NotesOutput lists every note.
type NotesOutput struct {
	Results []prefs.Note `json:"results"`
}

// ListNotes returns all notes ordered by id.
func ListNotes(ctx context.Context, notes *prefs.Notes) (*NotesOutput, error) {
	return &NotesOutput{Results: notes.All()}, nil
}

// RenderMarkdown converts note text to HTML. Raw HTML in the note is not passed through.
func RenderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return html.EscapeString(md)
	}
	return buf.String()
}
