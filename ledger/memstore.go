package ledger

// MemoryStore implements Store with in-process maps. It relies on the
// ledger's serialization of entry points and carries no locking of its
// own.
type MemoryStore struct {
	nextSession  SessionID
	sessions     map[SessionID]*EncryptedSession
	windows      map[WindowKey]*WindowMetrics
	correlations map[RequestID]Correlation
	results      map[RequestID]*RevealedResult
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextSession:  1,
		sessions:     make(map[SessionID]*EncryptedSession),
		windows:      make(map[WindowKey]*WindowMetrics),
		correlations: make(map[RequestID]Correlation),
		results:      make(map[RequestID]*RevealedResult),
	}
}

func (s *MemoryStore) InsertSession(session *EncryptedSession) (SessionID, error) {
	id := s.nextSession
	s.nextSession++

	stored := *session
	stored.ID = id
	s.sessions[id] = &stored
	return id, nil
}

func (s *MemoryStore) Session(id SessionID) (*EncryptedSession, bool, error) {
	session, ok := s.sessions[id]
	return session, ok, nil
}

func (s *MemoryStore) Window(key WindowKey) (*WindowMetrics, bool, error) {
	m, ok := s.windows[key]
	return m, ok, nil
}

func (s *MemoryStore) PutWindow(key WindowKey, m *WindowMetrics) error {
	stored := *m
	s.windows[key] = &stored
	return nil
}

func (s *MemoryStore) PutCorrelation(id RequestID, c Correlation) error {
	s.correlations[id] = c
	return nil
}

func (s *MemoryStore) Correlation(id RequestID) (Correlation, bool, error) {
	c, ok := s.correlations[id]
	return c, ok, nil
}

func (s *MemoryStore) PutResult(id RequestID, r *RevealedResult) error {
	stored := *r
	s.results[id] = &stored
	return nil
}

func (s *MemoryStore) Result(id RequestID) (*RevealedResult, bool, error) {
	r, ok := s.results[id]
	return r, ok, nil
}
