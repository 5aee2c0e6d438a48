package directory

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/clearrail/rtr-clearing/internal/models"
)

// Directory maps participant BICs to provisioned participants.
// It is read-mostly: participants are registered at initialization and
// looked up on every routed instruction.
type Directory struct {
	mu           sync.RWMutex
	participants map[string]models.Participant
}

func New() *Directory {
	return &Directory{
		participants: make(map[string]models.Participant),
	}
}

// Register adds a participant. Duplicate BICs are refused since a
// participant owns exactly one account.
func (d *Directory) Register(p models.Participant) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.participants[p.BIC]; exists {
		return errors.Errorf("participant %s already registered", p.BIC)
	}
	d.participants[p.BIC] = p
	return nil
}

// Lookup resolves a BIC to its participant.
func (d *Directory) Lookup(bic string) (models.Participant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.participants[bic]
	return p, ok
}

// Known reports whether bic belongs to a settlement-eligible participant.
func (d *Directory) Known(bic string) bool {
	_, ok := d.Lookup(bic)
	return ok
}

// All returns a copy of every registered participant.
func (d *Directory) All() []models.Participant {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.Participant, 0, len(d.participants))
	for _, p := range d.participants {
		out = append(out, p)
	}
	return out
}
