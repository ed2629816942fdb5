package schema

// Layouts of the Northwind export. Field order matches the column order of
// each file.

func str(name string) Field     { return Field{Name: name} }
func optStr(name string) Field  { return Field{Name: name, OmitIfNull: true} }
func integer(name string) Field { return Field{Name: name, Kind: KindInt} }
func float(name string) Field   { return Field{Name: name, Kind: KindFloat} }
func date(name string) Field    { return Field{Name: name, Kind: KindDate} }
func optDate(name string) Field { return Field{Name: name, Kind: KindDate, OmitIfNull: true} }

// Categories is categories.csv, the only semicolon-separated table.
var Categories = Table{
	Name:  "categories",
	File:  "categories.csv",
	Comma: ';',
	Key:   "CategoryID",
	Fields: []Field{
		str("CategoryID"),
		str("CategoryName"),
		str("Description"),
		str("Picture"),
	},
}

// Products is products.csv. SupplierID and CategoryID are foreign keys.
var Products = Table{
	Name:  "products",
	File:  "products.csv",
	Comma: ',',
	Key:   "ProductID",
	Fields: []Field{
		str("ProductID"),
		str("ProductName"),
		str("SupplierID"),
		str("CategoryID"),
		str("QuantityPerUnit"),
		float("UnitPrice"),
		integer("UnitsInStock"),
		integer("UnitsOnOrder"),
		integer("ReorderLevel"),
		integer("Discontinued"),
	},
}

// Suppliers is suppliers.csv. Its NULL contact columns are omitted.
var Suppliers = Table{
	Name:  "suppliers",
	File:  "suppliers.csv",
	Comma: ',',
	Key:   "SupplierID",
	Fields: []Field{
		str("SupplierID"),
		str("CompanyName"),
		str("ContactName"),
		str("ContactTitle"),
		str("Address"),
		str("City"),
		optStr("Region"),
		str("PostalCode"),
		str("Country"),
		optStr("Phone"),
		optStr("Fax"),
		optStr("HomePage"),
	},
}

// Employees is employees.csv. Dates keep only their YYYY-MM-DD prefix.
var Employees = Table{
	Name:  "employees",
	File:  "employees.csv",
	Comma: ',',
	Key:   "EmployeeID",
	Fields: []Field{
		str("EmployeeID"),
		str("LastName"),
		str("FirstName"),
		str("Title"),
		str("TitleOfCourtesy"),
		date("BirthDate"),
		date("HireDate"),
		str("Address"),
		str("City"),
		optStr("Region"),
		str("PostalCode"),
		str("Country"),
		str("HomePhone"),
		str("Extension"),
		str("Photo"),
		str("Notes"),
		optStr("ReportsTo"),
		str("PhotoPath"),
	},
}

// EmployeeTerritories maps each EmployeeID to its TerritoryID values.
var EmployeeTerritories = Table{
	Name:   "employee-territories",
	File:   "employee-territories.csv",
	Comma:  ',',
	Key:    "EmployeeID",
	FanOut: true,
	Child:  "TerritoryID",
	Fields: []Field{
		str("EmployeeID"),
		str("TerritoryID"),
	},
}

// Territories is territories.csv; RegionID refers to Regions.
var Territories = Table{
	Name:  "territories",
	File:  "territories.csv",
	Comma: ',',
	Key:   "TerritoryID",
	Fields: []Field{
		str("TerritoryID"),
		str("TerritoryDescription"),
		str("RegionID"),
	},
}

// Regions is regions.csv.
var Regions = Table{
	Name:  "regions",
	File:  "regions.csv",
	Comma: ',',
	Key:   "RegionID",
	Fields: []Field{
		str("RegionID"),
		str("RegionDescription"),
	},
}

// Shippers is shippers.csv, referenced by an order's ShipVia.
var Shippers = Table{
	Name:  "shippers",
	File:  "shippers.csv",
	Comma: ',',
	Key:   "ShipperID",
	Fields: []Field{
		str("ShipperID"),
		str("CompanyName"),
		str("Phone"),
	},
}

// Orders is orders.csv. ShippedDate is omitted while an order is unshipped.
var Orders = Table{
	Name:  "orders",
	File:  "orders.csv",
	Comma: ',',
	Key:   "OrderID",
	Fields: []Field{
		str("OrderID"),
		str("CustomerID"),
		str("EmployeeID"),
		date("OrderDate"),
		date("RequiredDate"),
		optDate("ShippedDate"),
		str("ShipVia"),
		float("Freight"),
		str("ShipName"),
		str("ShipAddress"),
		str("ShipCity"),
		optStr("ShipRegion"),
		str("ShipPostalCode"),
		str("ShipCountry"),
	},
}

// Customers is customers.csv.
var Customers = Table{
	Name:  "customers",
	File:  "customers.csv",
	Comma: ',',
	Key:   "CustomerID",
	Fields: []Field{
		str("CustomerID"),
		str("CompanyName"),
		str("ContactName"),
		str("ContactTitle"),
		str("Address"),
		str("City"),
		optStr("Region"),
		str("PostalCode"),
		str("Country"),
		str("Phone"),
		optStr("Fax"),
	},
}

// OrderDetails groups the line items of order-details.csv by OrderID.
var OrderDetails = Table{
	Name:   "order-details",
	File:   "order-details.csv",
	Comma:  ',',
	Key:    "OrderID",
	FanOut: true,
	Fields: []Field{
		str("OrderID"),
		str("ProductID"),
		float("UnitPrice"),
		integer("Quantity"),
		float("Discount"),
	},
}

// Northwind lists every source table in load order.
func Northwind() []Table {
	return []Table{
		Categories,
		Products,
		Suppliers,
		Employees,
		EmployeeTerritories,
		Territories,
		Regions,
		Shippers,
		OrderDetails,
		Orders,
		Customers,
	}
}
