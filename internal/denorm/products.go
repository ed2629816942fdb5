package denorm

import (
	"denorm/internal/record"
)

// Products builds one document per product with its supplier and category
// embedded in place of SupplierID and CategoryID.
func (e *Engine) Products() *record.Table {
	out := record.NewTable()
	for key, p := range e.in.Products.All() {
		doc := p.CloneExcept("SupplierID", "CategoryID")
		embedRef(doc, FieldSupplier, e.in.Suppliers, p, "SupplierID")
		embedRef(doc, FieldCategory, e.in.Categories, p, "CategoryID")
		out.Put(key, doc)
	}
	return out
}
