package tui

import (
	"sync"

	"github.com/tiendactl/tiendactl/internal/resource"
)

// UIState is the shared UI coordinator behind every controller. Operations
// run inside tea.Cmd goroutines and mutate this state; the model reads a
// snapshot on every repaint. The loading indicator is a counter, not a
// flag: overlapping operations each hold a reference and the spinner stays
// up until the last one releases it.
type UIState struct {
	mu      sync.Mutex
	loading int
	modal   bool
	alert   *resource.Alert
}

func NewUIState() *UIState {
	return &UIState{}
}

func (u *UIState) BeginLoading() {
	u.mu.Lock()
	u.loading++
	u.mu.Unlock()
}

func (u *UIState) EndLoading() {
	u.mu.Lock()
	if u.loading > 0 {
		u.loading--
	}
	u.mu.Unlock()
}

func (u *UIState) OpenModal() {
	u.mu.Lock()
	u.modal = true
	u.mu.Unlock()
}

func (u *UIState) CloseModal() {
	u.mu.Lock()
	u.modal = false
	u.mu.Unlock()
}

// Notify queues an alert. A single slot is kept; a newer alert replaces an
// undelivered one.
func (u *UIState) Notify(alert resource.Alert) {
	u.mu.Lock()
	u.alert = &alert
	u.mu.Unlock()
}

// Loading reports whether any operation is in flight.
func (u *UIState) Loading() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.loading > 0
}

// ModalOpen reports whether the shared modal flag is set.
func (u *UIState) ModalOpen() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.modal
}

// TakeAlert removes and returns the pending alert, or nil.
func (u *UIState) TakeAlert() *resource.Alert {
	u.mu.Lock()
	defer u.mu.Unlock()
	alert := u.alert
	u.alert = nil
	return alert
}
