// Package testutil provides scripted loaders and store fixtures shared by
// the builder and app tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/vk/workbuildgo/internal/entity"
	"github.com/vk/workbuildgo/internal/registry"
)

// LoadCall records one load attempt seen by a scripted loader.
type LoadCall struct {
	Loader         string
	Representation string
	Name           string
}

// CallLog collects load attempts across all scripted loaders of a test so
// that attempt ordering can be asserted.
type CallLog struct {
	mu    sync.Mutex
	calls []LoadCall
}

// Calls returns a copy of the recorded attempts in order.
func (l *CallLog) Calls() []LoadCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LoadCall, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *CallLog) record(call LoadCall) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

// ScriptedLoader is a registry.Loader with canned per-representation
// results. A representation name missing from Fail loads successfully.
type ScriptedLoader struct {
	LoaderName string
	Types      []string
	Repres     []string
	Off        bool
	// Fail maps lower-case representation names to the error returned for
	// them.
	Fail map[string]error
	Log  *CallLog
}

// Register registers the loader under its LoaderName, satisfying
// registry.Module.
func (s *ScriptedLoader) Register(r *registry.Registry) {
	r.RegisterLoader(s.LoaderName, s)
}

func (s *ScriptedLoader) ProductTypes() []string {
	return s.Types
}

func (s *ScriptedLoader) RepresentationNames() []string {
	return s.Repres
}

func (s *ScriptedLoader) Enabled() bool {
	return !s.Off
}

func (s *ScriptedLoader) Load(_ context.Context, req registry.LoadRequest) (*entity.Container, error) {
	if s.Log != nil {
		s.Log.record(LoadCall{
			Loader:         s.LoaderName,
			Representation: req.Representation.Name,
			Name:           req.Name,
		})
	}
	if err, ok := s.Fail[strings.ToLower(req.Representation.Name)]; ok && err != nil {
		return nil, err
	}
	return &entity.Container{
		Name:             req.Name,
		LoaderName:       s.LoaderName,
		RepresentationID: req.Representation.ID,
	}, nil
}
