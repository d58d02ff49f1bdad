package gi

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/engine/game_object"
	"github.com/Carmen-Shannon/oxy-gi/engine/renderer/material"
)

// MaterialOverrideScope temporarily switches the pipeline of a set of objects' materials and puts the originals back.
// Materials shared between objects are recorded once, so Restore always writes back the pre-override key.
type MaterialOverrideScope struct {
	mu       sync.Mutex
	recorded map[material.Material]string
	order    []material.Material
	applied  bool
}

// NewMaterialOverrideScope creates an empty scope.
//
// Returns:
//   - *MaterialOverrideScope: the scope
func NewMaterialOverrideScope() *MaterialOverrideScope {
	return &MaterialOverrideScope{recorded: make(map[material.Material]string)}
}

// Record snapshots the current pipeline key of every distinct material on objects.
// Materials already recorded keep their first snapshot.
//
// Parameters:
//   - objects: the objects whose materials will be overridden
func (s *MaterialOverrideScope) Record(objects []game_object.GameObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range objects {
		for _, mat := range obj.Materials() {
			if mat == nil {
				continue
			}
			if _, ok := s.recorded[mat]; ok {
				continue
			}
			s.recorded[mat] = mat.PipelineKey()
			s.order = append(s.order, mat)
		}
	}
}

// Apply sets pipelineKey on every recorded material.
//
// Parameters:
//   - pipelineKey: the override pipeline
//
// Returns:
//   - error: ErrOverrideActive if a previous Apply has not been restored
func (s *MaterialOverrideScope) Apply(pipelineKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied {
		return ErrOverrideActive
	}
	for _, mat := range s.order {
		mat.SetPipelineKey(pipelineKey)
	}
	s.applied = true
	common.Logger().Debug("material override applied", "pipeline", pipelineKey, "materials", len(s.order))
	return nil
}

// Restore writes every recorded pipeline key back and empties the scope.
func (s *MaterialOverrideScope) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, mat := range s.order {
		mat.SetPipelineKey(s.recorded[mat])
	}
	if len(s.order) > 0 {
		common.Logger().Debug("material override restored", "materials", len(s.order))
	}
	clear(s.recorded)
	s.order = s.order[:0]
	s.applied = false
}

// Active reports whether an override is currently applied.
//
// Returns:
//   - bool: true between Apply and Restore
func (s *MaterialOverrideScope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Acquire records objects and applies pipelineKey, returning the matching Restore.
// Callers defer the returned func.
//
// Parameters:
//   - objects: the objects to override
//   - pipelineKey: the override pipeline
//
// Returns:
//   - func(): restores the recorded keys
//   - error: ErrOverrideActive if the scope is already applied; nothing is recorded in that case
func (s *MaterialOverrideScope) Acquire(objects []game_object.GameObject, pipelineKey string) (func(), error) {
	if s.Active() {
		return nil, ErrOverrideActive
	}
	s.Record(objects)
	if err := s.Apply(pipelineKey); err != nil {
		return nil, err
	}
	return s.Restore, nil
}
