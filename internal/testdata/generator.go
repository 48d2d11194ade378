package testdata

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Tables are the base tables Seed creates, in creation order.
var Tables = []string{
	"customers", "suppliers", "products", "warehouses", "departments", "employees",
	"orders", "order_items", "invoices", "payments", "shipments", "audit_log",
}

// Views are the views Seed creates.
var Views = []string{"customer_totals", "recent_orders"}

var schema = []string{
	`CREATE TABLE customers (id TEXT PRIMARY KEY, name TEXT NOT NULL, email TEXT, region TEXT)`,
	`CREATE TABLE suppliers (id TEXT PRIMARY KEY, name TEXT NOT NULL, country TEXT)`,
	`CREATE TABLE products (id TEXT PRIMARY KEY, supplier_id TEXT REFERENCES suppliers(id), name TEXT NOT NULL, price_cents INTEGER NOT NULL DEFAULT 0, sku TEXT)`,
	`CREATE TABLE warehouses (id TEXT PRIMARY KEY, city TEXT NOT NULL)`,
	`CREATE TABLE departments (id TEXT PRIMARY KEY, name TEXT NOT NULL)`,
	`CREATE TABLE employees (id TEXT PRIMARY KEY, department_id TEXT REFERENCES departments(id), name TEXT NOT NULL, title TEXT, hired_on TEXT)`,
	`CREATE TABLE orders (id TEXT PRIMARY KEY, customer_id TEXT REFERENCES customers(id), placed_on TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'open')`,
	`CREATE TABLE order_items (order_id TEXT REFERENCES orders(id), product_id TEXT REFERENCES products(id), qty INTEGER NOT NULL, PRIMARY KEY (order_id, product_id))`,
	`CREATE TABLE invoices (id TEXT PRIMARY KEY, order_id TEXT REFERENCES orders(id), amount_cents INTEGER NOT NULL)`,
	`CREATE TABLE payments (id TEXT PRIMARY KEY, invoice_id TEXT REFERENCES invoices(id), amount_cents INTEGER NOT NULL, method TEXT)`,
	`CREATE TABLE shipments (id TEXT PRIMARY KEY, order_id TEXT REFERENCES orders(id), warehouse_id TEXT REFERENCES warehouses(id), shipped_on TEXT)`,
	`CREATE TABLE audit_log (id INTEGER PRIMARY KEY AUTOINCREMENT, entity TEXT NOT NULL, action TEXT NOT NULL, note TEXT)`,
	`CREATE VIEW customer_totals AS SELECT c.id, c.name, COUNT(o.id) AS orders FROM customers c LEFT JOIN orders o ON o.customer_id = c.id GROUP BY c.id`,
	`CREATE VIEW recent_orders AS SELECT * FROM orders ORDER BY placed_on DESC LIMIT 50`,
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Dennis", "Margaret", "Alan"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Thompson", "Liskov", "Ritchie", "Hamilton", "Turing"}
	regions    = []string{"north", "south", "east", "west"}
	cities     = []string{"Melbourne", "Sydney", "Perth", "Hobart"}
)

// Seed creates the sample schema in db and fills it with rows sample rows per
// table. The same seed always produces the same data apart from ids.
func Seed(ctx context.Context, db *sql.DB, rows int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	name := func() string {
		return firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
	}
	ids := map[string][]string{}
	insert := func(table, query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
		return nil
	}
	newID := func(table string) string {
		id := uuid.NewString()
		ids[table] = append(ids[table], id)
		return id
	}
	pick := func(table string) string {
		return ids[table][rng.Intn(len(ids[table]))]
	}

	for i := 0; i < rows; i++ {
		n := name()
		if err := insert("customers", `INSERT INTO customers VALUES (?, ?, ?, ?)`,
			newID("customers"), n, fmt.Sprintf("customer%d@example.com", i), regions[rng.Intn(len(regions))]); err != nil {
			return err
		}
		if err := insert("suppliers", `INSERT INTO suppliers VALUES (?, ?, ?)`, newID("suppliers"), n+" Pty Ltd", "AU"); err != nil {
			return err
		}
		if err := insert("warehouses", `INSERT INTO warehouses VALUES (?, ?)`, newID("warehouses"), cities[rng.Intn(len(cities))]); err != nil {
			return err
		}
		if err := insert("departments", `INSERT INTO departments VALUES (?, ?)`, newID("departments"), fmt.Sprintf("Dept %d", i+1)); err != nil {
			return err
		}
	}
	for i := 0; i < rows; i++ {
		if err := insert("products", `INSERT INTO products VALUES (?, ?, ?, ?, ?)`,
			newID("products"), pick("suppliers"), fmt.Sprintf("Widget %d", i+1), 100+rng.Intn(10000), fmt.Sprintf("SKU-%04d", i)); err != nil {
			return err
		}
		if err := insert("employees", `INSERT INTO employees VALUES (?, ?, ?, ?, ?)`,
			newID("employees"), pick("departments"), name(), "Engineer", fmt.Sprintf("2024-%02d-%02d", 1+rng.Intn(12), 1+rng.Intn(28))); err != nil {
			return err
		}
		orderID := newID("orders")
		if err := insert("orders", `INSERT INTO orders VALUES (?, ?, ?, ?)`,
			orderID, pick("customers"), fmt.Sprintf("2025-%02d-%02d", 1+rng.Intn(12), 1+rng.Intn(28)), "open"); err != nil {
			return err
		}
		if err := insert("order_items", `INSERT INTO order_items VALUES (?, ?, ?)`, orderID, ids["products"][i], 1+rng.Intn(5)); err != nil {
			return err
		}
		invoiceID := newID("invoices")
		amount := 100 + rng.Intn(50000)
		if err := insert("invoices", `INSERT INTO invoices VALUES (?, ?, ?)`, invoiceID, orderID, amount); err != nil {
			return err
		}
		if err := insert("payments", `INSERT INTO payments VALUES (?, ?, ?, ?)`, newID("payments"), invoiceID, amount, "card"); err != nil {
			return err
		}
		if err := insert("shipments", `INSERT INTO shipments VALUES (?, ?, ?, NULL)`, newID("shipments"), orderID, pick("warehouses")); err != nil {
			return err
		}
		if err := insert("audit_log", `INSERT INTO audit_log(entity, action, note) VALUES (?, ?, ?)`, "orders", "insert", orderID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
