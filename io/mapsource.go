package io

import (
	"fmt"

	"github.com/galquench/galquench/catalog"
)

// MapSource is an in-memory Source backed by maps. It is what GQB files
// parse into, and the backend of choice for tests and for callers that
// already hold their arrays.
type MapSource struct {
	name     string
	order    []string
	datasets map[string]*catalog.Column
	groups   map[string]*MapSource
}

// NewMapSource creates an empty in-memory source.
func NewMapSource(name string) *MapSource {
	return &MapSource{
		name:     name,
		datasets: map[string]*catalog.Column{},
		groups:   map[string]*MapSource{},
	}
}

// AddDataset attaches a dataset at this level, replacing any previous key.
func (s *MapSource) AddDataset(key string, col *catalog.Column) {
	if _, dup := s.datasets[key]; !dup {
		if _, dup := s.groups[key]; !dup {
			s.order = append(s.order, key)
		}
	}
	delete(s.groups, key)
	s.datasets[key] = col
}

// AddGroup attaches an empty subgroup at this level and returns it.
func (s *MapSource) AddGroup(key string) *MapSource {
	if _, dup := s.groups[key]; !dup {
		if _, dup := s.datasets[key]; !dup {
			s.order = append(s.order, key)
		}
	}
	delete(s.datasets, key)
	g := NewMapSource(s.name + "/" + key)
	s.groups[key] = g
	return g
}

func (s *MapSource) Name() string { return s.name }

func (s *MapSource) Keys() ([]string, error) {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *MapSource) IsGroup(key string) (bool, error) {
	if _, ok := s.groups[key]; ok {
		return true, nil
	}
	if _, ok := s.datasets[key]; ok {
		return false, nil
	}
	return false, fmt.Errorf("no key `%s` in `%s`", key, s.name)
}

func (s *MapSource) Group(key string) (Source, error) {
	if g, ok := s.groups[key]; ok {
		return g, nil
	}
	if _, ok := s.datasets[key]; ok {
		return nil, fmt.Errorf(
			"key `%s` in `%s` is a dataset, not a group", key, s.name,
		)
	}
	return nil, fmt.Errorf("no group `%s` in `%s`", key, s.name)
}

func (s *MapSource) Dataset(key string) (*catalog.Column, error) {
	if col, ok := s.datasets[key]; ok {
		return col, nil
	}
	if _, ok := s.groups[key]; ok {
		return nil, fmt.Errorf(
			"key `%s` in `%s` is a group, not a dataset", key, s.name,
		)
	}
	return nil, fmt.Errorf("no dataset `%s` in `%s`", key, s.name)
}
