package denorm

import (
	"denorm/internal/record"
)

// CustomersOrders builds the order documents and the customer documents that
// roll up each customer's order summaries. products and employees are the
// already denormalized document sets; orders embed copies of them.
//
// Orders are visited in source order. A customer document is created the
// first time one of its orders is seen, so customers without orders (or
// missing from the customer table) are never emitted.
func (e *Engine) CustomersOrders(products, employees *record.Table) (orders, customers *record.Table) {
	orders = record.NewTable()
	customers = record.NewTable()

	for key, o := range e.in.Orders.All() {
		doc := o.CloneExcept("EmployeeID", "ShipVia", "CustomerID")
		embedRef(doc, FieldEmployee, employees, o, "EmployeeID")
		embedRef(doc, FieldShipper, e.in.Shippers, o, "ShipVia")
		custID, hasCustomer := o.String("CustomerID")
		if hasCustomer {
			doc.Set("CustomerID", custID)
		}

		items, _ := e.in.OrderDetails.Get(key)
		full, short := lineItems(items, products)
		doc.Set(FieldLineItems, full)
		orders.Put(key, doc)

		if !hasCustomer {
			continue
		}
		cust := e.customerDoc(customers, custID)
		if cust == nil {
			continue
		}
		list, _ := cust.Get(FieldOrders)
		summaries, _ := list.([]*record.Record)
		cust.Set(FieldOrders, append(summaries, orderSummary(key, o, short)))
	}
	return orders, customers
}

// customerDoc returns the output document for custID, creating it from the
// customer table on first use. It returns nil for an unknown customer.
func (e *Engine) customerDoc(customers *record.Table, custID string) *record.Record {
	if doc, ok := customers.Get(custID); ok {
		return doc
	}
	src, ok := e.in.Customers.Get(custID)
	if !ok {
		return nil
	}
	doc := src.Clone()
	doc.Set(FieldOrders, []*record.Record{})
	customers.Put(custID, doc)
	return doc
}

// lineItems derives two independent views of every line item. The full view
// replaces ProductID with the whole product document; the short view keeps
// every original field and adds the product and category names.
func lineItems(items []*record.Record, products *record.Table) (full, short []*record.Record) {
	full = make([]*record.Record, 0, len(items))
	short = make([]*record.Record, 0, len(items))
	for _, item := range items {
		f := item.CloneExcept("ProductID")
		s := item.Clone()

		if prod, ok := lookup(products, item, "ProductID"); ok {
			f.Set(FieldProducts, prod.Clone())
			if name, ok := prod.Get(FieldProductName); ok {
				s.Set(FieldProductName, name)
			}
			if name, ok := categoryName(prod); ok {
				s.Set(FieldCategoryName, name)
			}
		}

		full = append(full, f)
		short = append(short, s)
	}
	return full, short
}

// orderSummary is the compact order entry embedded in a customer document.
func orderSummary(orderID string, o *record.Record, short []*record.Record) *record.Record {
	s := record.New()
	s.Set("OrderID", orderID)
	if d, ok := o.Get("OrderDate"); ok {
		s.Set("OrderDate", d)
	}
	s.Set(FieldProducts, short)
	if d, ok := o.Get("ShippedDate"); ok {
		s.Set("ShippedDate", d)
	}
	return s
}

func lookup(tbl *record.Table, src *record.Record, fk string) (*record.Record, bool) {
	id, ok := src.String(fk)
	if !ok {
		return nil, false
	}
	return tbl.Get(id)
}

func categoryName(prod *record.Record) (any, bool) {
	v, ok := prod.Get(FieldCategory)
	if !ok {
		return nil, false
	}
	cat, ok := v.(*record.Record)
	if !ok {
		return nil, false
	}
	return cat.Get(FieldCategoryName)
}
