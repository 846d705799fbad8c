package session

import "sync"

// State is the single current-state slot of a user's dialogue. The zero
// value is idle: no session object exists until the first multi-step flow
// touches it.
type State string

const (
	StateIdle State = ""

	// Checkout form
	StateOrderName    State = "order_name"
	StateOrderPhone   State = "order_phone"
	StateOrderAddress State = "order_address"
	StateOrderComment State = "order_comment"

	// Ad-hoc quantity entry after an add-to-cart tap
	StateQuantity State = "quantity"

	// Admin add-product wizard
	StateAddCategory    State = "add_category"
	StateAddNewCategory State = "add_new_category"
	StateAddName        State = "add_name"
	StateAddPrice       State = "add_price"
	StateAddDescription State = "add_description"
	StateAddPhoto       State = "add_photo"
)

// Form holds the partially collected field values of the active flow.
type Form struct {
	// Checkout fields
	Name    string
	Phone   string
	Address string

	// Quantity entry target
	CategoryKey  string
	ProductIndex int

	// Add-product wizard fields (CategoryKey is shared with quantity entry;
	// the two flows never run at the same time)
	ProductName string
	Price       int64
	Description string
}

// Session is one user's transient dialogue state.
type Session struct {
	State State
	Form  Form
}

// Store keeps sessions keyed by user ID. Dispatch is serialized per user,
// so the lock only guards the map itself.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// State returns the user's current state, idle for unknown users.
func (s *Store) State(userID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// SetState moves the user to a new state, creating the session if needed.
func (s *Store) SetState(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.State = state
		return
	}
	s.sessions[userID] = &Session{State: state}
}

// Form returns a copy of the user's pending form data.
func (s *Store) Form(userID int64) Form {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess.Form
	}
	return Form{}
}

// UpdateForm mutates the user's pending form data in place.
func (s *Store) UpdateForm(userID int64, fn func(*Form)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{}
		s.sessions[userID] = sess
	}
	fn(&sess.Form)
}

// Clear returns the user to idle and wipes pending form data.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
