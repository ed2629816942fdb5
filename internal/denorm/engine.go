// Package denorm resolves foreign keys across loaded Northwind tables and
// builds the embedded document sets: products, employees, orders, and
// customers.
//
// The engine never mutates its inputs. Every output document is a freshly
// built Record, and every embedded record is a deep copy, so one source row
// (a product referenced by many line items, say) never ends up aliased in two
// output trees. A foreign key that does not resolve is dropped without an
// error.
package denorm

import (
	"denorm/internal/record"
)

// Field names produced by the engine.
const (
	FieldSupplier     = "Supplier"
	FieldCategory     = "Category"
	FieldTerritories  = "Territories"
	FieldRegion       = "Region"
	FieldEmployee     = "Employee"
	FieldShipper      = "Shipper"
	FieldLineItems    = "LineItems"
	FieldProducts     = "Products"
	FieldOrders       = "Orders"
	FieldProductName  = "ProductName"
	FieldCategoryName = "CategoryName"
)

// Input holds the loaded source tables. Nil members behave as empty tables.
type Input struct {
	Categories  *record.Table
	Products    *record.Table
	Suppliers   *record.Table
	Employees   *record.Table
	Territories *record.Table
	Regions     *record.Table
	Shippers    *record.Table
	Orders      *record.Table
	Customers   *record.Table

	// EmployeeTerritories maps EmployeeID to TerritoryIDs.
	EmployeeTerritories *record.Index[string]
	// OrderDetails maps OrderID to its line items.
	OrderDetails *record.Index[*record.Record]
}

// Output holds the four document sets, each keyed by the entity's primary key
// in source order (customers in order of first reference).
type Output struct {
	Products  *record.Table
	Employees *record.Table
	Orders    *record.Table
	Customers *record.Table
}

// Engine runs the three resolution pipelines over one Input.
type Engine struct {
	in Input
}

// New returns an Engine over in.
func New(in Input) *Engine {
	return &Engine{in: in}
}

// Run executes the products, employees, and customer/order pipelines in that
// order. Orders embed the denormalized products and employees.
func (e *Engine) Run() Output {
	products := e.Products()
	employees := e.Employees()
	orders, customers := e.CustomersOrders(products, employees)
	return Output{
		Products:  products,
		Employees: employees,
		Orders:    orders,
		Customers: customers,
	}
}

// embedRef copies the row of ref referenced by src[fk] into dst under name.
// Nothing happens when src has no fk field or ref has no such row.
func embedRef(dst *record.Record, name string, ref *record.Table, src *record.Record, fk string) {
	id, ok := src.String(fk)
	if !ok {
		return
	}
	row, ok := ref.Get(id)
	if !ok {
		return
	}
	dst.Set(name, row.Clone())
}
