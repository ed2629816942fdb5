package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"denorm/internal/config"
	"denorm/internal/docwriter"
	"denorm/internal/record"
)

// northwindFixture is a small but complete export: every table present,
// one unknown supplier, one customer without orders.
var northwindFixture = map[string][]string{
	"categories.csv": {
		"CategoryID;CategoryName;Description;Picture",
		"1;Beverages;Soft drinks;pic",
	},
	"products.csv": {
		"ProductID,ProductName,SupplierID,CategoryID,QuantityPerUnit,UnitPrice,UnitsInStock,UnitsOnOrder,ReorderLevel,Discontinued",
		"10,Chai,5,1,10 boxes,18.00,39,0,10,0",
		"11,Queso Cabrales,1,1,1 kg pkg.,21.00,22,30,30,0",
	},
	"suppliers.csv": {
		"SupplierID,CompanyName,ContactName,ContactTitle,Address,City,Region,PostalCode,Country,Phone,Fax,HomePage",
		"1,Exotic Liquids,Charlotte Cooper,Purchasing Manager,49 Gilbert St.,London,NULL,EC1 4SD,UK,(171) 555-2222,NULL,NULL",
	},
	"employees.csv": {
		"EmployeeID,LastName,FirstName,Title,TitleOfCourtesy,BirthDate,HireDate,Address,City,Region,PostalCode,Country,HomePhone,Extension,Photo,Notes,ReportsTo,PhotoPath",
		"1,Davolio,Nancy,Sales Representative,Ms.,1948-12-08 00:00:00.000,1992-05-01 00:00:00.000,507 - 20th Ave. E.,Seattle,WA,98122,USA,(206) 555-9857,5467,0x15,BA in psychology,2,http://accweb/davolio.bmp",
	},
	"employee-territories.csv": {
		"EmployeeID,TerritoryID",
		"1,06897",
		"1,19713",
	},
	"territories.csv": {
		"TerritoryID,TerritoryDescription,RegionID",
		"06897,Wilton,1",
		"19713,Neward,1",
	},
	"regions.csv": {
		"RegionID,RegionDescription",
		"1,Eastern",
	},
	"shippers.csv": {
		"ShipperID,CompanyName,Phone",
		"1,Speedy Express,(503) 555-9831",
		"3,Federal Shipping,(503) 555-9931",
	},
	"orders.csv": {
		"OrderID,CustomerID,EmployeeID,OrderDate,RequiredDate,ShippedDate,ShipVia,Freight,ShipName,ShipAddress,ShipCity,ShipRegion,ShipPostalCode,ShipCountry",
		"10248,VINET,1,1996-07-04 00:00:00.000,1996-08-01 00:00:00.000,1996-07-16 00:00:00.000,3,32.38,Vins et alcools Chevalier,59 rue de l'Abbaye,Reims,NULL,51100,France",
		"10249,VINET,1,1996-07-05 00:00:00.000,1996-08-16 00:00:00.000,NULL,1,11.61,Vins et alcools Chevalier,59 rue de l'Abbaye,Reims,NULL,51100,France",
	},
	"customers.csv": {
		"CustomerID,CompanyName,ContactName,ContactTitle,Address,City,Region,PostalCode,Country,Phone,Fax",
		"ALFKI,Alfreds Futterkiste,Maria Anders,Sales Representative,Obere Str. 57,Berlin,NULL,12209,Germany,030-0074321,030-0076545",
		"VINET,Vins et alcools Chevalier,Paul Henriot,Accounting Manager,59 rue de l'Abbaye,Reims,NULL,51100,France,26.47.15.10,26.47.15.11",
	},
	"order-details.csv": {
		"OrderID,ProductID,UnitPrice,Quantity,Discount",
		"10248,11,14.00,12,0",
		"10248,10,9.80,10,0",
		"10249,11,18.60,9,0.15",
	},
}

// writeFixture materializes northwindFixture and returns a config pointing at
// it with a fresh output directory.
func writeFixture(t *testing.T) config.Config {
	t.Helper()
	in := t.TempDir()
	for name, lines := range northwindFixture {
		body := strings.Join(lines, "\n") + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte(body), 0o644))
	}
	cfg := config.Default()
	cfg.InputDir = in
	cfg.OutputDir = t.TempDir()
	return cfg
}

// readDocs decodes every line of an NDJSON output file.
func readDocs(t *testing.T, path string) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var docs []map[string]any
	for _, line := range bytes.Split(bytes.TrimRight(b, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m), string(line))
		docs = append(docs, m)
	}
	return docs
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := writeFixture(t)

	s := run(context.Background(), cfg)
	assert.Equal(t, 11, s.tables)
	assert.Equal(t, 0, s.failedTables)
	assert.Equal(t, 4, s.files)
	assert.Equal(t, 0, s.failedFiles)
	assert.Equal(t, 2+1+2+1, s.docs)

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, productsFile))
	require.NoError(t, err)
	first := strings.SplitN(string(raw), "\n", 2)[0]
	assert.Equal(t,
		`{"ProductID":"10","ProductName":"Chai","QuantityPerUnit":"10 boxes","UnitPrice":18.0,"UnitsInStock":39,"UnitsOnOrder":0,"ReorderLevel":10,"Discontinued":0,`+
			`"Category":{"CategoryID":"1","CategoryName":"Beverages","Description":"Soft drinks","Picture":"pic"}}`,
		first)

	employees := readDocs(t, filepath.Join(cfg.OutputDir, employeesFile))
	require.Len(t, employees, 1)
	assert.Equal(t, "1948-12-08", employees[0]["BirthDate"])
	assert.Equal(t, "WA", employees[0]["Region"])
	assert.NotContains(t, employees[0], "RegionID")
	terrs := employees[0]["Territories"].([]any)
	require.Len(t, terrs, 2)
	assert.Equal(t, "06897", terrs[0].(map[string]any)["TerritoryID"])
	assert.Equal(t, "Eastern", terrs[1].(map[string]any)["Region"].(map[string]any)["RegionDescription"])

	orders := readDocs(t, filepath.Join(cfg.OutputDir, ordersFile))
	require.Len(t, orders, 2)
	assert.Equal(t, "VINET", orders[0]["CustomerID"])
	assert.Equal(t, "Federal Shipping", orders[0]["Shipper"].(map[string]any)["CompanyName"])
	assert.Contains(t, orders[0]["Employee"].(map[string]any), "Territories")
	assert.NotContains(t, orders[1], "ShippedDate")
	items := orders[0]["LineItems"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Queso Cabrales", items[0].(map[string]any)["Products"].(map[string]any)["ProductName"])

	customers := readDocs(t, filepath.Join(cfg.OutputDir, customersFile))
	require.Len(t, customers, 1, "ALFKI has no orders")
	assert.Equal(t, "VINET", customers[0]["CustomerID"])
	summaries := customers[0]["Orders"].([]any)
	require.Len(t, summaries, 2)
	assert.Equal(t, "10248", summaries[0].(map[string]any)["OrderID"])
	assert.Equal(t, "10249", summaries[1].(map[string]any)["OrderID"])
	short := summaries[0].(map[string]any)["Products"].([]any)[1].(map[string]any)
	assert.Equal(t, "Chai", short["ProductName"])
	assert.Equal(t, "Beverages", short["CategoryName"])
	assert.Equal(t, "10", short["ProductID"])
}

func TestRun_Idempotent(t *testing.T) {
	cfg := writeFixture(t)

	run(context.Background(), cfg)
	first := map[string][]byte{}
	for _, name := range []string{productsFile, employeesFile, ordersFile, customersFile} {
		b, err := os.ReadFile(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err)
		first[name] = b
	}

	run(context.Background(), cfg)
	for name, want := range first {
		got, err := os.ReadFile(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}
}

func TestRun_MissingInputsStillWritesFiles(t *testing.T) {
	cfg := config.Default()
	cfg.InputDir = t.TempDir()
	cfg.OutputDir = t.TempDir()

	s := run(context.Background(), cfg)
	assert.Equal(t, 11, s.failedTables)
	assert.Equal(t, 11, s.loadErrs.count)
	assert.Equal(t, 0, s.failedFiles)
	assert.Equal(t, 0, s.docs)

	for _, name := range []string{productsFile, employeesFile, ordersFile, customersFile} {
		st, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		require.NoError(t, err, name)
		assert.Zero(t, st.Size(), name)
	}
}

func TestRun_PartialTableKeepsGoing(t *testing.T) {
	cfg := writeFixture(t)
	orders := northwindFixture["orders.csv"]
	broken := append(append([]string{}, orders[:2]...), "10250,VINET,1,not-a-date-but-fine,x,NULL,1,cheap,Ship,Addr,City,NULL,1,FR")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, "orders.csv"), []byte(strings.Join(broken, "\n")+"\n"), 0o644))

	s := run(context.Background(), cfg)
	assert.Equal(t, 1, s.failedTables)
	require.Len(t, s.loadErrs.first, 1)
	assert.Contains(t, s.loadErrs.first[0], "orders")
	assert.Contains(t, s.loadErrs.first[0], "Freight")

	got := readDocs(t, filepath.Join(cfg.OutputDir, ordersFile))
	assert.Len(t, got, 1, "rows before the bad line are kept")
}

func TestRun_WriteFailureIsolated(t *testing.T) {
	cfg := writeFixture(t)

	orig := writeFileFn
	t.Cleanup(func() { writeFileFn = orig })
	writeFileFn = func(path string, docs *record.Table) (docwriter.Summary, error) {
		if filepath.Base(path) == ordersFile {
			return docwriter.Summary{Path: path}, errors.New("disk full")
		}
		return orig(path, docs)
	}

	s := run(context.Background(), cfg)
	assert.Equal(t, 1, s.failedFiles)
	assert.Equal(t, []string{"disk full"}, s.writeErrs.first)

	_, err := os.Stat(filepath.Join(cfg.OutputDir, ordersFile))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	for _, name := range []string{productsFile, employeesFile, customersFile} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, name))
		assert.NoError(t, err, name)
	}
}

func TestErrAgg(t *testing.T) {
	t.Parallel()

	a := newErrAgg(2)
	for _, m := range []string{"a", "b", "c"} {
		a.add(m)
	}
	assert.Equal(t, 3, a.count)
	assert.Equal(t, []string{"a", "b"}, a.first)
}
