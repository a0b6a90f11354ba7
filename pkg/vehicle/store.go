package vehicle

import (
	"sync"
	"time"
)

type entry struct {
	mu        sync.Mutex
	state     *VehicleState
	updatedAt time.Time
	// set under mu once the entry is no longer in Store.vehicles
	removed bool
}

// Store keeps the VehicleState of every tracked vehicle. updates of one vehicle are serialized,
// different vehicles are updated concurrently.
type Store struct {
	mu       sync.RWMutex
	vehicles map[string]*entry

	staleAfter time.Duration
	now        func() time.Time
}

func NewStore(staleAfter time.Duration) *Store {
	return &Store{
		vehicles:   make(map[string]*entry),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (s *Store) getOrCreate(vehicleId string) *entry {
	s.mu.RLock()
	e, ok := s.vehicles[vehicleId]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.vehicles[vehicleId]; ok {
		return e
	}
	e = &entry{state: NewVehicleState(vehicleId), updatedAt: s.now()}
	s.vehicles[vehicleId] = e
	return e
}

// Update. run fn with the state of vehicleId, creating it when the vehicle is new. fn must not keep
// the state after it returns.
func (s *Store) Update(vehicleId string, fn func(vs *VehicleState) error) error {
	e := s.lockEntry(vehicleId)
	defer e.mu.Unlock()
	e.updatedAt = s.now()
	return fn(e.state)
}

// lockEntry. locked entry of vehicleId that is still in the store. an entry removed by Delete or
// PruneStale between the lookup and the lock is dropped and looked up again.
func (s *Store) lockEntry(vehicleId string) *entry {
	for {
		e := s.getOrCreate(vehicleId)
		e.mu.Lock()
		if !e.removed {
			return e
		}
		e.mu.Unlock()
	}
}

// Get. snapshot of the tracking summary of vehicleId.
func (s *Store) Get(vehicleId string) (Summary, bool) {
	s.mu.RLock()
	e, ok := s.vehicles[vehicleId]
	s.mu.RUnlock()
	if !ok {
		return Summary{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return newSummary(e.state), true
}

func (s *Store) Delete(vehicleId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.vehicles[vehicleId]
	if !ok {
		return false
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	delete(s.vehicles, vehicleId)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles)
}

// PruneStale. remove vehicles without a report for longer than staleAfter, returns their ids.
func (s *Store) PruneStale() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.staleAfter)
	pruned := make([]string, 0)
	for vehicleId, e := range s.vehicles {
		e.mu.Lock()
		stale := e.updatedAt.Before(cutoff)
		if stale {
			e.removed = true
		}
		e.mu.Unlock()
		if stale {
			delete(s.vehicles, vehicleId)
			pruned = append(pruned, vehicleId)
		}
	}
	return pruned
}
