package state

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	_ StateManager = (*Manager)(nil)
	_ StateManager = (*RedisManager)(nil)
)

func TestManager(t *testing.T) {
	m := NewManager()

	assert.Equal(t, None, m.GetUserState(1))
	m.SetUserState(1, WaitingForCarbs)
	assert.Equal(t, WaitingForCarbs, m.GetUserState(1))
	assert.Equal(t, None, m.GetUserState(2))

	_, ok := m.GetTempData(1, KeyGlucose)
	assert.False(t, ok)
	m.SetTempData(1, KeyGlucose, "180")
	v, ok := m.GetTempData(1, KeyGlucose)
	assert.True(t, ok)
	assert.Equal(t, "180", v)

	m.ClearTempData(1)
	_, ok = m.GetTempData(1, KeyGlucose)
	assert.False(t, ok)

	m.ClearUserState(1)
	assert.Equal(t, None, m.GetUserState(1))
}

func TestManager_Concurrent(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetUserState(id, WaitingForGlucose)
			m.SetTempData(id, KeyCarbs, fmt.Sprint(id))
			_ = m.GetUserState(id)
		}(int64(i))
	}
	wg.Wait()

	v, ok := m.GetTempData(49, KeyCarbs)
	assert.True(t, ok)
	assert.Equal(t, "49", v)
}
