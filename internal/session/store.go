package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zinko5/newsbot/pkg/logger"
	"github.com/Zinko5/newsbot/pkg/models"
)

// State is the per-session conversational memory
type State struct {
	History     []models.ChatTurn
	LastContext []models.Article
	LastSeen    time.Time
}

// Store keeps bounded per-session state. Sessions are created lazily on
// first use and evicted least-recently-seen once maxSessions is exceeded,
// so the map cannot grow without bound across many chat identities.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]*State
	maxSessions  int
	historyLimit int
}

// NewStore creates an empty session store
func NewStore(maxSessions, historyLimit int) *Store {
	return &Store{
		sessions:     make(map[string]*State),
		maxSessions:  maxSessions,
		historyLimit: historyLimit,
	}
}

// Context returns a copy of the article set used on the session's last turn
func (s *Store) Context(id string) []models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil
	}
	state.LastSeen = time.Now()

	out := make([]models.Article, len(state.LastContext))
	copy(out, state.LastContext)
	return out
}

// History returns a copy of the session's chat history
func (s *Store) History(id string) []models.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil
	}

	out := make([]models.ChatTurn, len(state.History))
	copy(out, state.History)
	return out
}

// Update records a completed turn: both utterances go into history (bounded
// to historyLimit entries, oldest dropped first) and usedContext becomes the
// session's working set. An empty usedContext never clears an existing one,
// so a fruitless search does not lose the articles a follow-up may refer to.
func (s *Store) Update(id, question, answer string, usedContext []models.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[id]
	if !ok {
		state = &State{LastSeen: time.Now()}
		s.sessions[id] = state
		s.evictLocked()
	}
	state.LastSeen = time.Now()

	state.History = append(state.History,
		models.ChatTurn{Role: models.RoleUser, Text: question},
		models.ChatTurn{Role: models.RoleAssistant, Text: answer},
	)
	if overflow := len(state.History) - s.historyLimit; overflow > 0 {
		state.History = state.History[overflow:]
	}

	if len(usedContext) > 0 {
		stored := make([]models.Article, len(usedContext))
		copy(stored, usedContext)
		state.LastContext = stored
	}
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictLocked drops the least-recently-seen session while over capacity.
// Linear scan; fine at the configured cap.
func (s *Store) evictLocked() {
	for len(s.sessions) > s.maxSessions {
		var (
			oldestID string
			oldest   time.Time
			first    = true
		)
		for id, state := range s.sessions {
			if first || state.LastSeen.Before(oldest) {
				oldestID = id
				oldest = state.LastSeen
				first = false
			}
		}
		delete(s.sessions, oldestID)
		logger.Debug("evicted idle session", zap.String("session_id", oldestID))
	}
}
