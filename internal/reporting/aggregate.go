// Package reporting turns a directory snapshot into per-location statistics.
// Nothing here performs I/O.
package reporting

import (
	"sort"

	"github.com/google/uuid"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain/contacts"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain/reports"
)

type personStats struct {
	id         uuid.UUID
	locations  []string
	phoneCount int
}

type locationGroup struct {
	persons    map[uuid.UUID]struct{}
	phoneCount int
}

// Aggregate groups people by the Location entries they carry. For each
// location it reports how many distinct people list it and the sum of those
// people's Phone entries.
//
// A person listed at several locations adds their whole phone count to every
// one of them, so the phone counts across items can add up to more than the
// number of Phone entries in the snapshot. Callers rely on this; do not
// apportion.
//
// Items come back sorted by location and are not bound to a report.
func Aggregate(people []contacts.PersonSnapshot) []reports.ReportItem {
	groups := map[string]*locationGroup{}
	for _, p := range people {
		st := statsFor(p)
		for _, loc := range st.locations {
			g, ok := groups[loc]
			if !ok {
				g = &locationGroup{persons: map[uuid.UUID]struct{}{}}
				groups[loc] = g
			}
			g.persons[st.id] = struct{}{}
			g.phoneCount += st.phoneCount
		}
	}

	items := make([]reports.ReportItem, 0, len(groups))
	for loc, g := range groups {
		items = append(items, reports.ReportItem{
			Location:    loc,
			PersonCount: len(g.persons),
			PhoneCount:  g.phoneCount,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Location < items[j].Location })
	return items
}

func statsFor(p contacts.PersonSnapshot) personStats {
	st := personStats{id: p.ID}
	seen := map[string]struct{}{}
	for _, ci := range p.ContactInfos {
		switch ci.Type {
		case contacts.ContactTypePhone:
			st.phoneCount++
		case contacts.ContactTypeLocation:
			if ci.Value == "" {
				continue
			}
			if _, dup := seen[ci.Value]; dup {
				continue
			}
			seen[ci.Value] = struct{}{}
			st.locations = append(st.locations, ci.Value)
		}
	}
	return st
}
