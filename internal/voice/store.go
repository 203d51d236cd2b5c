package voice

import (
	"sync"
	"time"
)

type entry struct {
	lock    sync.Mutex
	session *Session
	touched time.Time
}

// Store - реестр активных сессий в памяти процесса.
// Get и Put работают с копиями: изменения попадают в реестр только через Put.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

// NewStore создает пустой реестр
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Create регистрирует новую сессию
func (s *Store) Create(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = &entry{session: session.clone(), touched: s.now()}
}

// Get возвращает копию сессии
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.touched = s.now()
	return e.session.clone(), true
}

// Put заменяет сессию целиком
func (s *Store) Put(id string, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.session = session.clone()
		e.touched = s.now()
		return
	}
	s.entries[id] = &entry{session: session.clone(), touched: s.now()}
}

// Delete удаляет сессию
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Lock захватывает эксклюзивный доступ к сессии на время
// последовательности get/изменение/put. ok=false, если сессии нет.
func (s *Store) Lock(id string) (unlock func(), ok bool) {
	s.mu.RLock()
	e, exists := s.entries[id]
	s.mu.RUnlock()
	if !exists {
		return func() {}, false
	}

	e.lock.Lock()
	return e.lock.Unlock, true
}

// Len - количество активных сессий
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reap удаляет сессии без активности дольше ttl и возвращает их id.
// Сессии, занятые запросом, пропускаются.
func (s *Store) Reap(ttl time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	var reaped []string
	for id, e := range s.entries {
		if !e.touched.Before(cutoff) {
			continue
		}
		if !e.lock.TryLock() {
			continue
		}
		delete(s.entries, id)
		e.lock.Unlock()
		reaped = append(reaped, id)
	}
	return reaped
}
