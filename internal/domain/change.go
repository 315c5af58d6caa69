package domain

import "sort"

// ChangeRecord describes a significant change observed for one city during a
// cycle.
type ChangeRecord struct {
	City     string
	Snapshot Snapshot
	Previous Snapshot
	Changes  []MetricChange
}

// Change looks up the entry for m
func (r *ChangeRecord) Change(m Metric) (MetricChange, bool) {
	for _, c := range r.Changes {
		if c.Metric == m {
			return c, true
		}
	}
	return MetricChange{}, false
}

// ChangeSet holds the change records of one cycle keyed by normalized city.
type ChangeSet map[string]*ChangeRecord

// Cities returns the keys in a stable order
func (cs ChangeSet) Cities() []string {
	cities := make([]string, 0, len(cs))
	for city := range cs {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}
