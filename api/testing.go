// Package api
// Author: momentics
//
// Mock/testing utilities for the core contracts.

package api

// MockAffinity is a func-backed Affinity. Nil funcs succeed.
type MockAffinity struct {
	BindFunc                func(cpus []int) error
	SetRealtimePriorityFunc func(prio int) error
}

func (m *MockAffinity) Bind(cpus []int) error {
	if m.BindFunc == nil {
		return nil
	}
	return m.BindFunc(cpus)
}

func (m *MockAffinity) SetRealtimePriority(prio int) error {
	if m.SetRealtimePriorityFunc == nil {
		return nil
	}
	return m.SetRealtimePriorityFunc(prio)
}
