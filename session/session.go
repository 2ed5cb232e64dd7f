package session

import (
	"context"
	"sync"
	"time"

	"techlearn/catalog"
	"techlearn/certificate"
	"techlearn/database"
	"techlearn/identity"
	"techlearn/logger"
	"techlearn/models/course"
	"techlearn/progress"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
)

// Session is the learning state of one client device: its identity, the progress of
// that identity, the certificate policy and the transient view state.
type Session struct {
	ID           string
	Identity     *identity.Store
	Progress     *progress.Store
	Certificates *certificate.Policy

	mu          sync.Mutex
	lastSeen    time.Time
	selected    string
	certificate *course.CertificateInfo
	filter      catalog.Filter
}

// SelectCourse records the course the device is looking at.
func (s *Session) SelectCourse(courseID string) {
	s.mu.Lock()
	s.selected = courseID
	s.mu.Unlock()
}

func (s *Session) SelectedCourse() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetCertificate keeps the last generated certificate for download.
func (s *Session) SetCertificate(info *course.CertificateInfo) {
	s.mu.Lock()
	s.certificate = info
	s.mu.Unlock()
}

// Certificate returns the last generated certificate, or nil.
func (s *Session) Certificate() *course.CertificateInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.certificate == nil {
		return nil
	}
	info := *s.certificate
	return &info
}

func (s *Session) SetFilter(f catalog.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *Session) Filter() catalog.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Session) resetView() {
	s.mu.Lock()
	s.selected = ""
	s.certificate = nil
	s.filter.Reset()
	s.mu.Unlock()
}

func (s *Session) touch(at time.Time) {
	s.mu.Lock()
	s.lastSeen = at
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry holds the sessions of every device seen since startup.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	kv       database.KVStore
	catalog  *catalog.Catalog
	limit    int
	log      *logger.Logger
	now      func() time.Time
}

func NewRegistry(kv database.KVStore, cat *catalog.Catalog, limit int, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		kv:       kv,
		catalog:  cat,
		limit:    limit,
		log:      log.With("component", "sessions"),
		now:      time.Now,
	}
}

// NewDeviceID returns a fresh device identifier.
func NewDeviceID() string {
	return uuid.NewString()
}

// Open returns the session of deviceID, creating it when needed. A new session
// restores the identity the device last logged in with.
func (r *Registry) Open(ctx context.Context, deviceID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[deviceID]; ok {
		s.touch(r.now())
		return s
	}

	deviceKV := database.NewPrefixedKV(r.kv, "device/"+deviceID+"/")
	store := progress.NewStore(r.kv, r.catalog, r.log)
	s := &Session{
		ID:           deviceID,
		Progress:     store,
		Identity:     identity.NewStore(deviceKV, store, r.log.With("device", deviceID)),
		Certificates: certificate.NewPolicy(store, r.catalog, r.limit),
	}
	s.Identity.OnReset(s.resetView)
	s.touch(r.now())

	if err := s.Identity.Restore(ctx); err != nil {
		r.log.Warn("Failed to restore device session", "device", deviceID, "error", err)
	}
	r.sessions[deviceID] = s
	return s
}

// Get returns the session of deviceID without creating it.
func (r *Registry) Get(deviceID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[deviceID]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than idle and returns how many were dropped.
// Persisted state is untouched; a dropped device is restored on its next request.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	dropped := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Stats summarizes the registry.
type Stats struct {
	Sessions     int `json:"sessions"`
	LoggedIn     int `json:"logged_in"`
	ActiveToday  int `json:"active_today"`
	ActiveWeekly int `json:"active_this_week"`
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := now.With(r.now())
	today, week := t.BeginningOfDay(), t.BeginningOfWeek()
	st := Stats{Sessions: len(r.sessions)}
	for _, s := range r.sessions {
		if s.Identity.Current() != nil {
			st.LoggedIn++
		}
		seen := s.LastSeen()
		if !seen.Before(today) {
			st.ActiveToday++
		}
		if !seen.Before(week) {
			st.ActiveWeekly++
		}
	}
	return st
}
