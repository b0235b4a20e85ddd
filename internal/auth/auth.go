// Package auth holds the sender allow-list. An empty allow-list means no
// filtering: every sender may talk to the assistant.
package auth

import "sync"

// User is one allow-listed sender. Key is the opaque sender key used by the
// transport; Remark is an optional human-readable note.
type User struct {
	Key    string `json:"key"`
	Remark string `json:"remark,omitempty"`
}

type Repository interface {
	LoadAll() ([]User, error)
	Upsert(user User) error
	Remove(key string) error
}

type Service struct {
	mu      sync.RWMutex
	repo    Repository
	allowed map[string]User
}

// NewWithRepo preloads the allow-list from repo (may be nil) and merges the
// initial keys seeded from the environment.
func NewWithRepo(repo Repository, initial []string) (*Service, error) {
	s := &Service{repo: repo, allowed: make(map[string]User)}
	if repo != nil {
		users, err := repo.LoadAll()
		if err == nil {
			for _, u := range users {
				s.allowed[u.Key] = u
			}
		}
	}
	for _, key := range initial {
		if key == "" {
			continue
		}
		if _, ok := s.allowed[key]; !ok {
			s.allowed[key] = User{Key: key}
		}
	}
	return s, nil
}

func (s *Service) IsAllowed(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.allowed[key]
	return ok
}

// Size reports how many senders are allow-listed. Zero disables filtering.
func (s *Service) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.allowed)
}

func (s *Service) Upsert(user User) error {
	s.mu.Lock()
	s.allowed[user.Key] = user
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Upsert(user)
	}
	return nil
}

func (s *Service) Remove(key string) error {
	s.mu.Lock()
	delete(s.allowed, key)
	s.mu.Unlock()
	if s.repo != nil {
		return s.repo.Remove(key)
	}
	return nil
}

func (s *Service) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.allowed))
	for _, u := range s.allowed {
		out = append(out, u)
	}
	return out
}
