package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	_ "github.com/mattn/go-sqlite3"
)

type (
	// Store gives access to the product catalog kept in a sqlite
	// database. A store opened read-only rejects every mutation.
	Store struct {
		db        *sql.DB
		writeable bool
	}

	Product struct {
		ID    int64
		Name  string
		Price float64
	}
)

func openCatalogDatabase(ctx context.Context, dir string, readwrite bool) (*sql.DB, error) {
	dbfile := filepath.Join(dir, "catalog.db")
	if readwrite {
		err := os.MkdirAll(filepath.Dir(dbfile), 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory %v to store the catalog, cause %w", dir, err)
		}
	}
	var connstr string
	if readwrite {
		connstr = fmt.Sprintf("file:%v?_writable_schema=false&_journal=wal&mode=rwc", dbfile)
	} else {
		connstr = fmt.Sprintf("file:%v?_writable_schema=false&mode=ro", dbfile)
	}
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", dbfile, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to ping catalog %v, cause %w", dbfile, err)
	}
	return conn, nil
}

// Load opens (and when readwrite, initializes) the catalog stored under
// dir.
func Load(ctx context.Context, dir string, readwrite bool) (*Store, error) {
	conn, err := openCatalogDatabase(ctx, dir, readwrite)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn, writeable: readwrite}
	if readwrite {
		if err := s.init(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("unable to init catalog at %v, cause %w", dir, err)
		}
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists sections(
			section_id integer primary key autoincrement,
			name text not null unique
		)`,
		`create table if not exists products(
			product_id integer primary key autoincrement,
			name text not null,
			name_hash64 integer not null,
			price real not null,
			section_id integer references sections(section_id)
		)`,
		`create index if not exists idx_products_name_hash64
			on products(name_hash64)
		`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return fmt.Errorf("unable to run %v, cause %w", cmd, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func hashName(name string) int64 {
	return int64(xxhash.Sum64String(name))
}

// SaveProduct inserts a new product and returns its id. Product names
// must be unique across the catalog, the indexed name hash keeps that
// check cheap.
func (s *Store) SaveProduct(ctx context.Context, name string, price float64) (int64, error) {
	if !s.writeable {
		return 0, ReadOnly{Op: "save product"}
	}
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from products where name_hash64 = ? and name = ?`,
		hashName(name), name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unable to check product name %v, cause %w", name, err)
	}
	if count > 0 {
		return 0, DuplicateProductName{Name: name}
	}
	res, err := s.db.ExecContext(ctx, `insert into products(name, name_hash64, price) values (?, ?, ?)`,
		name, hashName(name), price)
	if err != nil {
		return 0, fmt.Errorf("unable to store product %v, cause %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to read id of product %v, cause %w", name, err)
	}
	return id, nil
}

// Product loads one product by id.
func (s *Store) Product(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := s.db.QueryRowContext(ctx, `select product_id, name, price from products where product_id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ProductNotFound{ID: id}
	} else if err != nil {
		return Product{}, fmt.Errorf("unable to load product %v, cause %w", id, err)
	}
	return p, nil
}

// ListProducts returns every product ordered by id.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `select product_id, name, price from products order by product_id asc`)
	if err != nil {
		return nil, fmt.Errorf("unable to list products, cause %w", err)
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		err = rows.Scan(&p.ID, &p.Name, &p.Price)
		if err != nil {
			return nil, fmt.Errorf("unable to scan product row, cause %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProduct replaces name and price of an existing product.
func (s *Store) UpdateProduct(ctx context.Context, id int64, name string, price float64) error {
	if !s.writeable {
		return ReadOnly{Op: "update product"}
	}
	res, err := s.db.ExecContext(ctx, `update products set name = ?, name_hash64 = ?, price = ? where product_id = ?`,
		name, hashName(name), price, id)
	if err != nil {
		return fmt.Errorf("unable to update product %v, cause %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to confirm update of product %v, cause %w", id, err)
	}
	if affected == 0 {
		return ProductNotFound{ID: id}
	}
	return nil
}

// DeleteProduct removes a product by id.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	if !s.writeable {
		return ReadOnly{Op: "delete product"}
	}
	res, err := s.db.ExecContext(ctx, `delete from products where product_id = ?`, id)
	if err != nil {
		return fmt.Errorf("unable to delete product %v, cause %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to confirm delete of product %v, cause %w", id, err)
	}
	if affected == 0 {
		return ProductNotFound{ID: id}
	}
	return nil
}

// SeedGoodies populates an empty catalog with the Goodies section and
// ten sample products. Calling it on a non-empty catalog is a no-op, so
// it is safe to run on every startup.
func (s *Store) SeedGoodies(ctx context.Context) error {
	if !s.writeable {
		return ReadOnly{Op: "seed"}
	}
	var count int
	err := s.db.QueryRowContext(ctx, `select count(*) from sections`).Scan(&count)
	if err != nil {
		return fmt.Errorf("unable to count sections, cause %w", err)
	}
	if count > 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin seed transaction, cause %w", err)
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `insert into sections(name) values (?)`, "Goodies")
	if err != nil {
		return fmt.Errorf("unable to create the Goodies section, cause %w", err)
	}
	sectionID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("unable to read id of the Goodies section, cause %w", err)
	}
	for i := 1; i <= 10; i++ {
		name := fmt.Sprintf("The product with the ID %v", i)
		_, err = tx.ExecContext(ctx, `insert into products(name, name_hash64, price, section_id) values (?, ?, ?, ?)`,
			name, hashName(name), float64(i), sectionID)
		if err != nil {
			return fmt.Errorf("unable to seed product %v, cause %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit seed transaction, cause %w", err)
	}
	return nil
}
