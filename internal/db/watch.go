package db

import "sync"

// watcherList tracks subscribers interested in durable mutations. Signals
// are coalesced: a subscriber that has not drained its channel yet will not
// queue further signals, and a read simply re-derives the whole view.
type watcherList struct {
	mu  sync.Mutex
	chs []chan struct{}
}

// Watch returns a channel that receives a signal after every durable
// mutation. The caller re-reads and re-derives status and sort order on
// each signal.
func (db *DB) Watch() <-chan struct{} {
	db.watchers.mu.Lock()
	defer db.watchers.mu.Unlock()

	ch := make(chan struct{}, 1)
	db.watchers.chs = append(db.watchers.chs, ch)
	return ch
}

// Unwatch removes a subscription previously returned by Watch.
func (db *DB) Unwatch(ch <-chan struct{}) {
	db.watchers.mu.Lock()
	defer db.watchers.mu.Unlock()

	for i, c := range db.watchers.chs {
		if c == ch {
			db.watchers.chs = append(db.watchers.chs[:i], db.watchers.chs[i+1:]...)
			close(c)
			return
		}
	}
}

// notifyWatchers signals all subscribers without blocking.
func (db *DB) notifyWatchers() {
	db.watchers.mu.Lock()
	defer db.watchers.mu.Unlock()

	for _, ch := range db.watchers.chs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
