package auth

import (
	"path/filepath"
	"testing"
)

type memRepo struct{ users []User }

func (m *memRepo) LoadAll() ([]User, error) { return append([]User{}, m.users...), nil }
func (m *memRepo) Upsert(u User) error {
	for i, x := range m.users {
		if x.Key == u.Key {
			m.users[i] = u
			return nil
		}
	}
	m.users = append(m.users, u)
	return nil
}
func (m *memRepo) Remove(key string) error {
	out := make([]User, 0, len(m.users))
	for _, x := range m.users {
		if x.Key != key {
			out = append(out, x)
		}
	}
	m.users = out
	return nil
}

func TestServiceBasic(t *testing.T) {
	repo := &memRepo{users: []User{{Key: "alice", Remark: "tester"}}}
	svc, err := NewWithRepo(repo, []string{"bob"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if !svc.IsAllowed("alice") {
		t.Fatalf("repo preload not effective")
	}
	if !svc.IsAllowed("bob") {
		t.Fatalf("initial env list not merged")
	}
	if svc.IsAllowed("mallory") {
		t.Fatalf("unexpected allowed")
	}
	if svc.Size() != 2 {
		t.Fatalf("want size 2, got %d", svc.Size())
	}

	if err := svc.Upsert(User{Key: "carol"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !svc.IsAllowed("carol") {
		t.Fatalf("upsert not effective")
	}

	if err := svc.Remove("alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if svc.IsAllowed("alice") {
		t.Fatalf("remove not effective")
	}

	if lst := svc.List(); len(lst) != 2 {
		t.Fatalf("want 2 users, got %d", len(lst))
	}
}

func TestEmptyServiceAllowsNobodyButIsDetectable(t *testing.T) {
	svc, err := NewWithRepo(nil, nil)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if svc.Size() != 0 {
		t.Fatalf("empty service should have size 0")
	}
	if svc.IsAllowed("anyone") {
		t.Fatalf("empty service should not report members")
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allowlist.json")
	repo, err := NewFileRepository(path)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}

	// Fresh (empty) file loads as an empty list.
	users, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("load fresh: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("fresh repo should be empty, got %+v", users)
	}

	if err := repo.Upsert(User{Key: "alice", Remark: "friend"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(User{Key: "bob"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(User{Key: "alice", Remark: "renamed"}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if err := repo.Remove("bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	users, err = repo.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(users) != 1 || users[0].Key != "alice" || users[0].Remark != "renamed" {
		t.Fatalf("unexpected contents: %+v", users)
	}
}
