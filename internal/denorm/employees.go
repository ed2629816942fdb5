package denorm

import (
	"denorm/internal/record"
)

// Employees builds one document per employee. An employee with territory
// entries gets a Territories list in entry order; each territory carries its
// Region in place of RegionID. Territory IDs unknown to the territory table
// are skipped.
func (e *Engine) Employees() *record.Table {
	out := record.NewTable()
	for key, emp := range e.in.Employees.All() {
		doc := emp.Clone()
		if ids, ok := e.in.EmployeeTerritories.Get(key); ok && len(ids) > 0 {
			doc.Set(FieldTerritories, e.territories(ids))
		}
		out.Put(key, doc)
	}
	return out
}

func (e *Engine) territories(ids []string) []*record.Record {
	list := make([]*record.Record, 0, len(ids))
	for _, id := range ids {
		terr, ok := e.in.Territories.Get(id)
		if !ok {
			continue
		}
		t := terr.CloneExcept("RegionID")
		embedRef(t, FieldRegion, e.in.Regions, terr, "RegionID")
		list = append(list, t)
	}
	return list
}
