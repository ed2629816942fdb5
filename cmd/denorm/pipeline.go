package main

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"denorm/internal/config"
	"denorm/internal/datasource/file"
	"denorm/internal/denorm"
	"denorm/internal/docwriter"
	"denorm/internal/loader"
	"denorm/internal/metrics"
	"denorm/internal/record"
	"denorm/internal/schema"
)

// Output file names, written in this order.
const (
	productsFile  = "products.json"
	employeesFile = "employees.json"
	ordersFile    = "orders.json"
	customersFile = "customers.json"
)

// errLimit caps the diagnostics repeated in the end-of-run summary.
const errLimit = 20

// Seams for tests.
var (
	loadTableFn   = loader.LoadTable
	loadValuesFn  = loader.LoadValues
	loadRecordsFn = loader.LoadRecords
	writeFileFn   = docwriter.WriteFile
)

// errAgg keeps a total count and the first few messages.
type errAgg struct {
	limit int
	count int
	first []string
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit}
}

func (a *errAgg) add(msg string) {
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
}

// runSummary accumulates the outcome of one run.
type runSummary struct {
	start time.Time

	tables       int
	failedTables int
	rows         int

	files       int
	failedFiles int
	docs        int
	bytes       int64

	loadErrs  *errAgg
	writeErrs *errAgg
}

func newRunSummary() *runSummary {
	return &runSummary{
		start:     time.Now(),
		loadErrs:  newErrAgg(errLimit),
		writeErrs: newErrAgg(errLimit),
	}
}

// log prints the aggregate counters followed by the first failures.
func (s *runSummary) log() {
	log.Printf("summary: tables=%d failed_tables=%d rows=%d files=%d failed_files=%d documents=%d bytes=%d elapsed=%s",
		s.tables, s.failedTables, s.rows, s.files, s.failedFiles, s.docs, s.bytes,
		time.Since(s.start).Truncate(time.Millisecond))
	logAgg("load failures", s.loadErrs)
	logAgg("write failures", s.writeErrs)
}

func logAgg(title string, a *errAgg) {
	if a.count == 0 {
		return
	}
	log.Printf("%s: %d (showing first %d)", title, a.count, len(a.first))
	for i, msg := range a.first {
		log.Printf("  #%03d: %s", i+1, msg)
	}
}

// run loads every table, runs the three pipelines, and writes the four
// document files. Failures are recorded in the summary; the run always
// completes.
func run(ctx context.Context, cfg config.Config) *runSummary {
	s := newRunSummary()
	in := loadInput(ctx, cfg, s)
	out := denormalize(cfg, in)
	writeOutput(cfg, out, s)
	return s
}

func loadInput(ctx context.Context, cfg config.Config, s *runSummary) denorm.Input {
	dir := file.NewDir(cfg.InputDir)

	track := func(res loader.Result) {
		metrics.RecordStep(cfg.Job, "load:"+res.Table, res.Err, res.Elapsed)
		metrics.RecordRow(cfg.Job, metrics.KindLoaded, int64(res.Rows))
		s.tables++
		s.rows += res.Rows
		if res.Err != nil {
			s.failedTables++
			s.loadErrs.add(res.Err.Error())
		}
	}
	table := func(t schema.Table) *record.Table {
		tbl, res := loadTableFn(ctx, dir.File(t.File), t)
		track(res)
		return tbl
	}

	var in denorm.Input
	in.Categories = table(schema.Categories)
	in.Products = table(schema.Products)
	in.Suppliers = table(schema.Suppliers)
	in.Employees = table(schema.Employees)

	et, res := loadValuesFn(ctx, dir.File(schema.EmployeeTerritories.File), schema.EmployeeTerritories)
	track(res)
	in.EmployeeTerritories = et

	in.Territories = table(schema.Territories)
	in.Regions = table(schema.Regions)
	in.Shippers = table(schema.Shippers)

	od, res := loadRecordsFn(ctx, dir.File(schema.OrderDetails.File), schema.OrderDetails)
	track(res)
	in.OrderDetails = od

	in.Orders = table(schema.Orders)
	in.Customers = table(schema.Customers)
	return in
}

func denormalize(cfg config.Config, in denorm.Input) denorm.Output {
	eng := denorm.New(in)
	var out denorm.Output

	timed := func(step string, fn func()) {
		start := time.Now()
		fn()
		d := time.Since(start)
		metrics.RecordStep(cfg.Job, "pipeline:"+step, nil, d)
		log.Printf("denorm: pipeline %s done in %s", step, d.Truncate(time.Microsecond))
	}

	timed("products", func() { out.Products = eng.Products() })
	timed("employees", func() { out.Employees = eng.Employees() })
	timed("customers", func() { out.Orders, out.Customers = eng.CustomersOrders(out.Products, out.Employees) })
	return out
}

func writeOutput(cfg config.Config, out denorm.Output, s *runSummary) {
	files := []struct {
		name string
		docs *record.Table
	}{
		{productsFile, out.Products},
		{employeesFile, out.Employees},
		{ordersFile, out.Orders},
		{customersFile, out.Customers},
	}

	for _, f := range files {
		sum, err := writeFileFn(filepath.Join(cfg.OutputDir, f.name), f.docs)
		metrics.RecordStep(cfg.Job, "write:"+f.name, err, sum.Elapsed)
		s.files++
		if err != nil {
			s.failedFiles++
			s.writeErrs.add(err.Error())
			continue
		}
		metrics.RecordRow(cfg.Job, metrics.KindDocuments, int64(sum.Docs))
		metrics.RecordBytes(cfg.Job, f.name, sum.Bytes)
		s.docs += sum.Docs
		s.bytes += sum.Bytes
	}
}
