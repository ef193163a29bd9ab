package auth

import (
	"os"
	"path/filepath"
	"testing"
)

type memRepo struct{ list []Reviewer }

func (m *memRepo) LoadAll() ([]Reviewer, error) { return append([]Reviewer{}, m.list...), nil }
func (m *memRepo) Upsert(r Reviewer) error {
	for i, x := range m.list {
		if x.ID == r.ID {
			m.list[i] = r
			return nil
		}
	}
	m.list = append(m.list, r)
	return nil
}
func (m *memRepo) Remove(id int64) error {
	out := make([]Reviewer, 0, len(m.list))
	for _, x := range m.list {
		if x.ID != id {
			out = append(out, x)
		}
	}
	m.list = out
	return nil
}

func TestServiceBasic(t *testing.T) {
	repo := &memRepo{list: []Reviewer{{ID: 10, Username: "alice"}}}
	svc, err := NewWithRepo(repo, []int64{20}, 99)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if !svc.IsAllowed(10) {
		t.Fatalf("repo preload not effective")
	}
	if !svc.IsAllowed(20) {
		t.Fatalf("initial env list not merged")
	}
	if !svc.IsAllowed(99) || !svc.IsAdmin(99) {
		t.Fatalf("admin must always be allowed")
	}
	if svc.IsAllowed(30) {
		t.Fatalf("unexpected allowed")
	}

	if err := svc.Upsert(Reviewer{ID: 30, Username: "bob"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !svc.IsAllowed(30) {
		t.Fatalf("upsert not effective")
	}
	if repo.list[len(repo.list)-1].AddedAt.IsZero() {
		t.Fatalf("added_at not stamped")
	}

	if err := svc.Remove(10); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if svc.IsAllowed(10) {
		t.Fatalf("remove not effective")
	}

	lst := svc.List()
	if len(lst) != 2 || lst[0].ID != 20 || lst[1].ID != 30 {
		t.Fatalf("unexpected list: %+v", lst)
	}
}

func TestFileRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "allowlist.json")
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	list, err := repo.LoadAll()
	if err != nil || len(list) != 0 {
		t.Fatalf("empty file: got %v, %v", list, err)
	}

	if err := repo.Upsert(Reviewer{ID: 1, Username: "a"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(Reviewer{ID: 2, Username: "b"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(Reviewer{ID: 1, Username: "a2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Remove(2); err != nil {
		t.Fatalf("remove: %v", err)
	}

	svc, err := NewWithRepo(repo, nil, 0)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	lst := svc.List()
	if len(lst) != 1 || lst[0].Username != "a2" {
		t.Fatalf("unexpected list: %+v", lst)
	}
	if svc.IsAdmin(0) {
		t.Fatalf("zero admin id must not match")
	}
}

func TestFileRepository_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := NewWithRepo(repo, nil, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}
