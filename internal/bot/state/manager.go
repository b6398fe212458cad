package state

import "sync"

// User states
const (
	None = "none"

	// log flow: glucose, then carbs, then insulin
	WaitingForGlucose = "waiting_for_glucose"
	WaitingForCarbs   = "waiting_for_carbs"
	WaitingForInsulin = "waiting_for_insulin"

	// dose flow: glucose, then carbs as text or a food photo
	DoseWaitingForGlucose = "dose_waiting_for_glucose"
	DoseWaitingForCarbs   = "dose_waiting_for_carbs"
	DoseReady             = "dose_ready"

	WaitingForCarbRatio    = "waiting_for_carb_ratio"
	WaitingForGlucoseRatio = "waiting_for_glucose_ratio"
	WaitingForTimezone     = "waiting_for_timezone"
	WaitingForAlarm        = "waiting_for_alarm"
)

// Temp data keys
const (
	KeyGlucose   = "glucose"
	KeyCarbs     = "carbs"
	KeyCarbRatio = "carb_ratio"
)

// StateManager keeps per chat user conversation state
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	ClearUserState(userID int64)
	SetTempData(userID int64, key, value string)
	GetTempData(userID int64, key string) (string, bool)
	ClearTempData(userID int64)
}

// Manager manages user states and temporary data in memory
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]string
	mu         sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]string),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *Manager) ClearUserState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, userID)
}

// SetTempData sets temporary data for a user
func (m *Manager) SetTempData(userID int64, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]string)
	}
	m.tempData[userID][key] = value
}

// GetTempData gets temporary data for a user
func (m *Manager) GetTempData(userID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.tempData[userID][key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}
