package auth

import (
	"sort"
	"sync"
	"time"
)

// Reviewer is a Telegram user allowed to decide on suggested replies.
type Reviewer struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	AddedAt   time.Time `json:"added_at"`
}

type Repository interface {
	LoadAll() ([]Reviewer, error)
	Upsert(r Reviewer) error
	Remove(id int64) error
}

// Service is the reviewer allowlist. The admin is always allowed.
type Service struct {
	repo    Repository
	adminID int64

	mu        sync.RWMutex
	reviewers map[int64]Reviewer
}

func NewWithRepo(repo Repository, initial []int64, adminID int64) (*Service, error) {
	s := &Service{repo: repo, adminID: adminID, reviewers: make(map[int64]Reviewer)}
	if repo != nil {
		list, err := repo.LoadAll()
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			s.reviewers[r.ID] = r
		}
	}
	// ids from env come without profile data
	for _, id := range initial {
		if _, ok := s.reviewers[id]; !ok {
			s.reviewers[id] = Reviewer{ID: id}
		}
	}
	return s, nil
}

func (s *Service) IsAdmin(userID int64) bool {
	return s.adminID != 0 && userID == s.adminID
}

func (s *Service) AdminID() int64 { return s.adminID }

func (s *Service) IsAllowed(userID int64) bool {
	if s.IsAdmin(userID) {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.reviewers[userID]
	return ok
}

func (s *Service) Upsert(r Reviewer) error {
	if r.AddedAt.IsZero() {
		r.AddedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.reviewers[r.ID] = r
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Upsert(r)
	}
	return nil
}

func (s *Service) Remove(userID int64) error {
	s.mu.Lock()
	delete(s.reviewers, userID)
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Remove(userID)
	}
	return nil
}

// List returns reviewers ordered by id.
func (s *Service) List() []Reviewer {
	s.mu.RLock()
	out := make([]Reviewer, 0, len(s.reviewers))
	for _, r := range s.reviewers {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
