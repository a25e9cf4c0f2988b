package services

import (
	"sync"
	"time"
	"tripcost-api/models"

	"github.com/google/uuid"
)

// Session is one authenticated user session. It owns the current form
// values, the last computed result, the cached saved-trip list and the
// error/loading flags. The mutex serializes workflow operations, so no
// operation observes another one half-applied.
type Session struct {
	ID string

	mu       sync.Mutex
	lastSeen time.Time

	form         models.TripForm
	details      *models.TripDetails
	trips        []models.SavedTrip
	loadingTrips bool
	errorMsg     string
}

// SessionState is the renderable snapshot of a session.
type SessionState struct {
	Form         models.TripForm     `json:"form"`
	Details      *models.TripDetails `json:"details"`
	SavedTrips   []models.SavedTrip  `json:"savedTrips"`
	LoadingTrips bool                `json:"loadingTrips"`
	Error        string              `json:"error,omitempty"`
}

func (s *Session) touch(now time.Time) {
	s.lastSeen = now
}

// IdleSince reports how long ago the session was last used.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionService keeps the in-memory registry of live sessions.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionService(ttl time.Duration) *SessionService {
	return &SessionService{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a fresh session preloaded with the default form values.
func (s *SessionService) Create() *Session {
	session := &Session{
		ID:       uuid.New().String(),
		lastSeen: time.Now(),
		form: models.TripForm{
			Origin:         "São Paulo, SP",
			Destination:    "Rio de Janeiro, RJ",
			Stops:          []string{},
			FuelEfficiency: "12",
			FuelPrice:      "5.50",
		},
		trips: []models.SavedTrip{},
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get resolves a session by id and marks it as recently used.
func (s *SessionService) Get(id string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	session.mu.Lock()
	session.touch(time.Now())
	session.mu.Unlock()

	return session, true
}

// Remove drops a session from the registry.
func (s *SessionService) Remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// CleanupExpired evicts sessions idle past the configured TTL and returns
// how many were removed.
func (s *SessionService) CleanupExpired() int {
	now := time.Now()

	s.mu.RLock()
	candidates := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		candidates = append(candidates, session)
	}
	s.mu.RUnlock()

	// Idle checks happen outside the registry lock so a session stuck in a
	// slow external call cannot stall every other request.
	removed := 0
	for _, session := range candidates {
		if session.IdleSince(now) > s.ttl {
			s.mu.Lock()
			delete(s.sessions, session.ID)
			s.mu.Unlock()
			removed++
		}
	}

	return removed
}

// Count reports the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
