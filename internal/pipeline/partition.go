package pipeline

import (
	"sort"
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
)

// Partition splits results into valid and excluded, each sorted by record
// ID, and indexes which identified records left each schema field null.
// Every schema field has an entry, possibly empty.
func Partition(runID string, results []*model.Result) *model.Batch {
	batch := &model.Batch{
		RunID:    runID,
		Valid:    []*model.Result{},
		Excluded: []*model.Result{},
		Missing:  make(map[string][]string, len(model.Schema)),
	}
	for _, name := range model.FieldNames() {
		batch.Missing[name] = []string{}
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		if r.IsValid() {
			batch.Valid = append(batch.Valid, r)
		} else {
			batch.Excluded = append(batch.Excluded, r)
		}
	}

	sortByID(batch.Valid)
	sortByID(batch.Excluded)

	for _, part := range [][]*model.Result{batch.Valid, batch.Excluded} {
		for _, r := range part {
			if strings.TrimSpace(r.ID) == "" {
				continue
			}
			for _, name := range r.NullFields() {
				batch.Missing[name] = append(batch.Missing[name], r.ID)
			}
		}
	}
	for _, ids := range batch.Missing {
		sort.Strings(ids)
	}

	return batch
}

// sortByID orders by ID; duplicated IDs fall back to the listing content
// so the order does not depend on completion order
func sortByID(results []*model.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Property, results[j].Property
		switch {
		case a.ID != b.ID:
			return a.ID < b.ID
		case a.Title != b.Title:
			return a.Title < b.Title
		case a.Description != b.Description:
			return a.Description < b.Description
		default:
			return a.RawPrice < b.RawPrice
		}
	})
}
