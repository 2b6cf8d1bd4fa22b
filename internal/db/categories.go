package db

import (
	"database/sql"

	"github.com/dori/neverforget/internal/model"
)

// GetCategories returns all categories, the non-deletable default first
func (db *DB) GetCategories() ([]model.Category, error) {
	rows, err := db.Query(`
		SELECT name, icon, is_deletable
		FROM categories
		ORDER BY is_deletable, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		var deletable int
		if err := rows.Scan(&c.Name, &c.Icon, &deletable); err != nil {
			return nil, err
		}
		c.IsDeletable = deletable == 1
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory returns a category by name, or nil if it does not exist
func (db *DB) GetCategory(name string) (*model.Category, error) {
	var c model.Category
	var deletable int

	err := db.QueryRow(`
		SELECT name, icon, is_deletable FROM categories WHERE name = ?
	`, name).Scan(&c.Name, &c.Icon, &deletable)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.IsDeletable = deletable == 1
	return &c, nil
}

// CreateCategory adds a new deletable category
func (db *DB) CreateCategory(name, icon string) error {
	_, err := db.Exec(`
		INSERT INTO categories (name, icon, is_deletable) VALUES (?, ?, 1)
	`, name, icon)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// UpdateCategoryIcon updates a category's icon
func (db *DB) UpdateCategoryIcon(name, icon string) error {
	_, err := db.Exec(`UPDATE categories SET icon = ? WHERE name = ?`, icon, name)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// DeleteCategory removes a deletable category after moving its tasks to the
// default category. Deleting the non-deletable default, or a category that
// does not exist, is a no-op.
func (db *DB) DeleteCategory(name string) error {
	c, err := db.GetCategory(name)
	if err != nil {
		return err
	}
	if c == nil || !c.IsDeletable {
		return nil
	}

	err = db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE tasks SET category = ? WHERE category = ?`,
			model.DefaultCategoryName, name)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`DELETE FROM categories WHERE name = ?`, name)
		return err
	})
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// CategoryCount returns the number of categories
func (db *DB) CategoryCount() (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count)
	return count, err
}
