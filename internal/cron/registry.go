package cron

import (
	"context"
	"sort"
)

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Entry pairs a job with its schedule.
type Entry struct {
	Job      Job
	Schedule Schedule
}

// Registry tracks registered cron jobs.
type Registry struct {
	entries []Entry
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a job. A nil job or schedule is ignored, and a name already
// registered replaces the earlier entry.
func (r *Registry) Register(job Job, schedule Schedule) {
	if job == nil || schedule == nil {
		return
	}
	for i, e := range r.entries {
		if e.Job.Name() == job.Name() {
			r.entries[i] = Entry{Job: job, Schedule: schedule}
			return
		}
	}
	r.entries = append(r.entries, Entry{Job: job, Schedule: schedule})
}

// Entries returns the registered entries in the order they were added.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Lookup finds a job by name.
func (r *Registry) Lookup(name string) (Job, bool) {
	for _, e := range r.entries {
		if e.Job.Name() == name {
			return e.Job, true
		}
	}
	return nil, false
}

// Names lists the registered job names alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.Job.Name())
	}
	sort.Strings(names)
	return names
}
