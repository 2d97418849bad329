// Package profile is the SQLite-backed customer profile store. Pet allergies
// recorded here become long-term exclusions merged into every search for the
// customer.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/kailas-cloud/petsearch/internal/domain"
	domprofile "github.com/kailas-cloud/petsearch/internal/domain/profile"
	"github.com/kailas-cloud/petsearch/internal/usecase/exclusion"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS pets (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_id TEXT NOT NULL REFERENCES customers(id),
	name        TEXT NOT NULL DEFAULT '',
	species     TEXT NOT NULL DEFAULT '',
	breed       TEXT NOT NULL DEFAULT '',
	age_years   INTEGER NOT NULL DEFAULT 0,
	allergies   TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_pets_customer ON pets(customer_id);
`

// Store implements the chat profile port over SQLite.
type Store struct {
	db *sqlx.DB
}

// New creates a profile store on an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the SQLite file at path and prepares the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrProfileUnavailable, path, err)
	}
	s := &Store{db: db}
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the customer and pet tables when missing.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: init schema: %w", domain.ErrProfileUnavailable, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// PingContext checks database availability.
func (s *Store) PingContext(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProfileUnavailable, err)
	}
	return nil
}

// EnsureCustomer creates the customer row when it does not exist yet.
func (s *Store) EnsureCustomer(ctx context.Context, id, name string) error {
	const q = `INSERT INTO customers (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, q, id, name); err != nil {
		return fmt.Errorf("%w: ensure customer %s: %w", domain.ErrProfileUnavailable, id, err)
	}
	return nil
}

// Customer looks up a customer by ID.
func (s *Store) Customer(ctx context.Context, id string) (domprofile.Customer, error) {
	var c domprofile.Customer
	const q = `SELECT id, name FROM customers WHERE id = ?`
	err := s.db.GetContext(ctx, &c, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domprofile.Customer{}, fmt.Errorf("%w: %s", domain.ErrCustomerNotFound, id)
	}
	if err != nil {
		return domprofile.Customer{}, fmt.Errorf("%w: get customer %s: %w", domain.ErrProfileUnavailable, id, err)
	}
	return c, nil
}

// SavePet records a pet on an existing customer profile.
func (s *Store) SavePet(ctx context.Context, customerID string, pet domprofile.Pet) error {
	if _, err := s.Customer(ctx, customerID); err != nil {
		return err
	}

	pet = pet.Normalized()
	allergies, err := json.Marshal(pet.Allergies)
	if err != nil {
		return fmt.Errorf("marshal allergies: %w", err)
	}
	if pet.Allergies == nil {
		allergies = []byte("[]")
	}

	const q = `INSERT INTO pets (customer_id, name, species, breed, age_years, allergies)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		customerID, pet.Name, pet.Species, pet.Breed, pet.AgeYears, string(allergies))
	if err != nil {
		return fmt.Errorf("%w: save pet for %s: %w", domain.ErrProfileUnavailable, customerID, err)
	}
	return nil
}

// Pets returns the customer's pets with their allergy lists.
func (s *Store) Pets(ctx context.Context, customerID string) ([]domprofile.Pet, error) {
	const q = `SELECT name, species, breed, age_years, allergies
		FROM pets WHERE customer_id = ? ORDER BY id`
	rows, err := s.db.QueryxContext(ctx, q, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list pets for %s: %w", domain.ErrProfileUnavailable, customerID, err)
	}
	defer rows.Close()

	var pets []domprofile.Pet
	for rows.Next() {
		var p domprofile.Pet
		var allergies string
		if err := rows.Scan(&p.Name, &p.Species, &p.Breed, &p.AgeYears, &allergies); err != nil {
			return nil, fmt.Errorf("%w: scan pet: %w", domain.ErrProfileUnavailable, err)
		}
		if err := json.Unmarshal([]byte(allergies), &p.Allergies); err != nil {
			return nil, fmt.Errorf("parse allergies for %s: %w", customerID, err)
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list pets for %s: %w", domain.ErrProfileUnavailable, customerID, err)
	}
	return pets, nil
}

// Exclusions returns the duplicate-free union of allergies across the
// customer's pets. An unknown customer simply has no exclusions.
func (s *Store) Exclusions(ctx context.Context, customerID string) ([]string, error) {
	pets, err := s.Pets(ctx, customerID)
	if err != nil {
		return nil, err
	}
	sets := make([][]string, 0, len(pets))
	for _, p := range pets {
		sets = append(sets, p.Allergies)
	}
	return exclusion.Merge(sets...), nil
}
