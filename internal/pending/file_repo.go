package pending

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Draft marks a chat as waiting for the edited text of a suggested reply.
// There is at most one draft per chat.
type Draft struct {
	ChatID         int64     `json:"chat_id"`
	ReviewerID     int64     `json:"reviewer_id"`
	InteractionID  string    `json:"interaction_id"`
	SuggestedReply string    `json:"suggested_reply"`
	RequestedAt    time.Time `json:"requested_at"`
}

type Repository interface {
	LoadAll() ([]Draft, error)
	Get(chatID int64) (Draft, bool, error)
	Upsert(d Draft) error
	Remove(chatID int64) error
}

// FileRepository stores drafts as a JSON array so an edit survives a bot restart.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) LoadAll() ([]Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadUnlocked()
}

func (r *FileRepository) Get(chatID int64) (Draft, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drafts, err := r.loadUnlocked()
	if err != nil {
		return Draft{}, false, err
	}
	for _, d := range drafts {
		if d.ChatID == chatID {
			return d, true, nil
		}
	}
	return Draft{}, false, nil
}

// Upsert replaces the chat's previous draft, if any.
func (r *FileRepository) Upsert(d Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drafts, err := r.loadUnlocked()
	if err != nil {
		return err
	}
	updated := false
	for i, x := range drafts {
		if x.ChatID == d.ChatID {
			drafts[i] = d
			updated = true
			break
		}
	}
	if !updated {
		drafts = append(drafts, d)
	}
	return r.saveUnlocked(drafts)
}

func (r *FileRepository) Remove(chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drafts, err := r.loadUnlocked()
	if err != nil {
		return err
	}
	out := make([]Draft, 0, len(drafts))
	for _, d := range drafts {
		if d.ChatID != chatID {
			out = append(out, d)
		}
	}
	return r.saveUnlocked(out)
}

func (r *FileRepository) loadUnlocked() ([]Draft, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()
	var drafts []Draft
	if err := json.NewDecoder(f).Decode(&drafts); err != nil {
		if errors.Is(err, io.EOF) {
			return []Draft{}, nil
		}
		return nil, fmt.Errorf("decode pending drafts: %w", err)
	}
	return drafts, nil
}

func (r *FileRepository) saveUnlocked(drafts []Draft) error {
	f, err := os.OpenFile(r.path, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(drafts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
