package store

import (
	"strings"
	"sync"

	"github.com/theocluzel/esclavedigital/internal/models"
)

// NewMemoryStores returns map-backed stores, preloaded with the given
// chapters. Used by tests and by staging runs without a database file.
// All maps are guarded: requests mutating the same account concurrently
// must not lose updates.
func NewMemoryStores(chapters []models.Chapter) *Stores {
	ch := &memChapters{byID: make(map[int]models.Chapter, len(chapters))}
	for _, c := range chapters {
		ch.byID[c.ID] = c
	}
	return &Stores{
		Accounts:  &memAccounts{byEmail: make(map[string]*models.Account)},
		Sessions:  &memSessions{byID: make(map[string]*models.Session)},
		Chapters:  ch,
		Checkouts: &memCheckouts{byID: make(map[string]*models.CheckoutRecord)},
		Events:    &memEvents{},
		Audit:     &memAudit{},
	}
}

// ---------- accounts ----------

type memAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*models.Account
	nextID  uint
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *memAccounts) Create(a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := emailKey(a.Email)
	if _, ok := m.byEmail[key]; ok {
		return ErrAlreadyExists
	}
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.byEmail[key] = &cp
	return nil
}

func (m *memAccounts) GetByEmail(email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byEmail[emailKey(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) GetByID(id uint) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.byEmail {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memAccounts) Update(a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := emailKey(a.Email)
	if _, ok := m.byEmail[key]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.byEmail[key] = &cp
	return nil
}

func (m *memAccounts) List() ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Account, 0, len(m.byEmail))
	for _, a := range m.byEmail {
		out = append(out, *a)
	}
	// stable order by id, small n
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ID > out[j].ID; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out, nil
}

// ---------- sessions ----------

type memSessions struct {
	mu   sync.Mutex
	byID map[string]*models.Session
}

func (m *memSessions) Create(s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memSessions) Get(id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Revoke(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byID[id]; ok {
		s.Revoked = true
	}
	return nil
}

// ---------- chapters ----------

type memChapters struct {
	byID map[int]models.Chapter // read-only after construction, no lock needed
}

func (m *memChapters) Get(id int) (*models.Chapter, error) {
	ch, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ch, nil
}

// ---------- checkout records ----------

type memCheckouts struct {
	mu   sync.Mutex
	byID map[string]*models.CheckoutRecord
}

func (m *memCheckouts) Put(rec *models.CheckoutRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *rec
	m.byID[rec.SessionID] = &cp
	return nil
}

func (m *memCheckouts) Get(sessionID string) (*models.CheckoutRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// ---------- access events ----------

type memEvents struct {
	mu     sync.Mutex
	events []models.AccessEvent
}

func (m *memEvents) Record(e *models.AccessEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = uint(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}

// All returns recorded events (test helper).
func (m *memEvents) All() []models.AccessEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.AccessEvent, len(m.events))
	copy(out, m.events)
	return out
}

// ---------- audit log ----------

type memAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (m *memAudit) RecordAudit(l *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.ID = uint(len(m.logs) + 1)
	m.logs = append(m.logs, *l)
	return nil
}
