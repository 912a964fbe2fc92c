package panel

import "sync"

// HistoryNavigator is an in-memory location stack. OnChange, when set, is
// called after every Push or Replace.
type HistoryNavigator struct {
	OnChange func(path string, replaced bool)

	mu      sync.Mutex
	history []string
}

func NewHistoryNavigator(start string) *HistoryNavigator {
	if start == "" {
		start = "/"
	}
	return &HistoryNavigator{history: []string{start}}
}

func (n *HistoryNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history[len(n.history)-1]
}

func (n *HistoryNavigator) Push(path string) {
	n.mu.Lock()
	n.history = append(n.history, path)
	cb := n.OnChange
	n.mu.Unlock()
	if cb != nil {
		cb(path, false)
	}
}

func (n *HistoryNavigator) Replace(path string) {
	n.mu.Lock()
	n.history[len(n.history)-1] = path
	cb := n.OnChange
	n.mu.Unlock()
	if cb != nil {
		cb(path, true)
	}
}

func (n *HistoryNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
