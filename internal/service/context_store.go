package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"match-coach/internal/domain"
)

// UserContextStore guarda el estado conductual por usuario.
// Un usuario ausente no es error: Get crea el contexto con defaults.
// Las actualizaciones son merges last-write-wins, sin aislamiento transaccional:
// dos updates concurrentes al mismo usuario pueden pisarse, nunca corromperse.
type UserContextStore interface {
	Get(userID string) (domain.UserContext, error)
	Put(userID string, uc domain.UserContext) error
	Update(userID string, patch domain.UserContextPatch) error
}

// applyPatch mezcla un parche sobre un contexto: escalares sobreescriben,
// slices reemplazan completo, lastActivity siempre se refresca.
func applyPatch(uc domain.UserContext, patch domain.UserContextPatch) domain.UserContext {
	if patch.CurrentEmotion != nil {
		uc.CurrentEmotion = *patch.CurrentEmotion
	}
	if patch.RelationshipGoals != nil {
		uc.RelationshipGoals = *patch.RelationshipGoals
	}
	if patch.CommunicationStyle != nil {
		uc.CommunicationStyle = *patch.CommunicationStyle
	}
	if patch.PersonalityTraits != nil {
		uc.PersonalityTraits = patch.PersonalityTraits
	}
	if patch.LearningPreferences != nil {
		uc.LearningPreferences = *patch.LearningPreferences
	}
	uc.LastActivity = time.Now().UTC()
	return uc
}

type memoryContextStore struct {
	mu    sync.Mutex
	items map[string]domain.UserContext
}

// NewMemoryContextStore devuelve el store por defecto, respaldado por un mapa en proceso.
func NewMemoryContextStore() UserContextStore {
	return &memoryContextStore{
		items: make(map[string]domain.UserContext),
	}
}

func (s *memoryContextStore) Get(userID string) (domain.UserContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uc, ok := s.items[userID]
	if !ok {
		uc = domain.NewUserContext(userID)
		s.items[userID] = uc
	}
	return uc, nil
}

func (s *memoryContextStore) Put(userID string, uc domain.UserContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uc.LastActivity = time.Now().UTC()
	s.items[userID] = uc
	return nil
}

func (s *memoryContextStore) Update(userID string, patch domain.UserContextPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uc, ok := s.items[userID]
	if !ok {
		uc = domain.NewUserContext(userID)
	}
	s.items[userID] = applyPatch(uc, patch)
	return nil
}

type redisContextStore struct {
	client *redis.Client
	prefix string
}

// NewRedisContextStore respalda el store en Redis, con JSON por usuario.
func NewRedisContextStore(client *redis.Client) UserContextStore {
	if client == nil {
		return nil
	}
	return &redisContextStore{
		client: client,
		prefix: "coach:context:",
	}
}

func (s *redisContextStore) load(ctx context.Context, userID string) (domain.UserContext, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+userID).Result()
	if err == redis.Nil {
		return domain.UserContext{}, false, nil
	}
	if err != nil {
		return domain.UserContext{}, false, err
	}
	var uc domain.UserContext
	if err := json.Unmarshal([]byte(raw), &uc); err != nil {
		return domain.UserContext{}, false, err
	}
	return uc, true, nil
}

func (s *redisContextStore) save(ctx context.Context, userID string, uc domain.UserContext) error {
	raw, err := json.Marshal(uc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+userID, raw, 0).Err()
}

func (s *redisContextStore) Get(userID string) (domain.UserContext, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.NewUserContext(userID), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	uc, ok, err := s.load(ctx, userID)
	if err != nil {
		return domain.UserContext{}, err
	}
	if !ok {
		uc = domain.NewUserContext(userID)
		if err := s.save(ctx, userID, uc); err != nil {
			return domain.UserContext{}, err
		}
	}
	return uc, nil
}

func (s *redisContextStore) Put(userID string, uc domain.UserContext) error {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	uc.LastActivity = time.Now().UTC()
	return s.save(ctx, userID, uc)
}

func (s *redisContextStore) Update(userID string, patch domain.UserContextPatch) error {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	uc, ok, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		uc = domain.NewUserContext(userID)
	}
	return s.save(ctx, userID, applyPatch(uc, patch))
}
