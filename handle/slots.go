package handle

import (
	"sync"

	"fortio.org/safecast"

	"github.com/wippyai/tangara/errors"
)

type entry struct {
	obj         Object
	gen         uint32
	borrowCount uint32
	valid       bool
}

// slots is generation-checked object storage with borrow tracking.
type slots struct {
	entries  []entry
	freeList []uint32
	mu       sync.RWMutex
	closed   bool
}

func newSlots() *slots {
	return &slots{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

func (s *slots) create(obj Object) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Detail("object table closed").
			Build()
	}

	if n := len(s.freeList); n > 0 {
		slot := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		e := &s.entries[slot-1]
		e.obj = obj
		e.valid = true
		return newHandle(slot, e.gen), nil
	}

	slot, err := safecast.Conv[uint32](len(s.entries) + 1)
	if err != nil {
		return 0, errors.Overflow(errors.PhaseCall, nil, len(s.entries)+1, "uint32")
	}
	s.entries = append(s.entries, entry{obj: obj, gen: 1, valid: true})
	return newHandle(slot, 1), nil
}

// locate returns the live entry for h. Caller holds the lock.
func (s *slots) locate(h Handle) (*entry, error) {
	slot := h.slot()
	if slot == 0 || int(slot) > len(s.entries) {
		return nil, errors.New(errors.PhaseLookup, errors.KindNotFound).
			Detail("unknown %s", h).
			Build()
	}
	e := &s.entries[slot-1]
	if !e.valid || e.gen != h.gen() {
		return nil, errors.Dangling(errors.PhaseLookup, "object handle", uint64(h))
	}
	return e, nil
}

func (s *slots) get(h Handle) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.locate(h)
	if err != nil {
		return Object{}, err
	}
	return e.obj, nil
}

func (s *slots) borrow(h Handle) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.locate(h)
	if err != nil {
		return Object{}, err
	}
	e.borrowCount++
	return e.obj, nil
}

func (s *slots) returnBorrow(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.locate(h)
	if err != nil {
		return err
	}
	if e.borrowCount == 0 {
		return errors.New(errors.PhaseCall, errors.KindOwnership).
			Detail("%s has no outstanding borrow", h).
			Build()
	}
	e.borrowCount--
	return nil
}

// remove frees the slot and bumps its generation. force ignores borrows.
func (s *slots) remove(h Handle, force bool) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.locate(h)
	if err != nil {
		return Object{}, err
	}
	if e.borrowCount > 0 && !force {
		return Object{}, errors.New(errors.PhaseCall, errors.KindBusy).
			Detail("cannot drop %s with %d outstanding borrows", h, e.borrowCount).
			Build()
	}
	obj := e.obj
	e.obj = Object{}
	e.valid = false
	e.borrowCount = 0
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	s.freeList = append(s.freeList, h.slot())
	return obj, nil
}

func (s *slots) each(fn func(Handle, Object) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		e := &s.entries[i]
		if !e.valid {
			continue
		}
		if !fn(newHandle(uint32(i+1), e.gen), e.obj) {
			return
		}
	}
}

func (s *slots) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) - len(s.freeList)
}

func (s *slots) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
