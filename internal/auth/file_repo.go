package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository keeps the allowlist as a JSON array.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	// Touch file if not exists
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) LoadAll() ([]Reviewer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadUnlocked()
}

func (r *FileRepository) Upsert(rev Reviewer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadUnlocked()
	if err != nil {
		return err
	}
	updated := false
	for i, x := range list {
		if x.ID == rev.ID {
			list[i] = rev
			updated = true
			break
		}
	}
	if !updated {
		list = append(list, rev)
	}
	return r.saveUnlocked(list)
}

func (r *FileRepository) Remove(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.loadUnlocked()
	if err != nil {
		return err
	}
	out := make([]Reviewer, 0, len(list))
	for _, x := range list {
		if x.ID != id {
			out = append(out, x)
		}
	}
	return r.saveUnlocked(out)
}

// loadUnlocked treats an empty file as an empty allowlist.
func (r *FileRepository) loadUnlocked() ([]Reviewer, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()
	var list []Reviewer
	if err := json.NewDecoder(f).Decode(&list); err != nil {
		if errors.Is(err, io.EOF) {
			return []Reviewer{}, nil
		}
		return nil, fmt.Errorf("decode allowlist: %w", err)
	}
	return list, nil
}

func (r *FileRepository) saveUnlocked(list []Reviewer) error {
	f, err := os.OpenFile(r.path, os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
