package db

import (
	"time"

	"github.com/dori/neverforget/internal/model"
	"github.com/google/uuid"
)

// seededNotificationTime preserves the historical 9am fire time for fresh
// installs; the documented fallback for an absent row stays 11:00.
const seededNotificationTime = "09:00"

type seedTask struct {
	name           string
	category       string
	recurrenceDays int
}

var defaultTasks = []seedTask{
	{"Détecteurs de fumée", "Maison", 180},
	{"Ventilation salle de bain", "Maison", 90},
	{"Filtres aspirateur", "Maison", 60},
	{"Pression pneus voiture", "Voiture", 30},
	{"Niveau lave-glace", "Voiture", 180},
	{"Pression pneus scooter", "Scooter", 30},
}

// seedDefaults populates categories, settings and starter tasks on first
// launch. A database that already has categories is left untouched.
func (db *DB) seedDefaults() error {
	count, err := db.CategoryCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, c := range model.DefaultCategories {
		deletable := 0
		if c.IsDeletable {
			deletable = 1
		}
		if _, err := db.Exec(`
			INSERT INTO categories (name, icon, is_deletable) VALUES (?, ?, ?)
		`, c.Name, c.Icon, deletable); err != nil {
			return err
		}
	}

	if _, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
	`, NotificationTimeKey, seededNotificationTime); err != nil {
		return err
	}

	today := model.Today(time.Local)
	for _, t := range defaultTasks {
		if _, err := db.Exec(`
			INSERT INTO tasks (id, name, category, recurrence_days, next_due_date, created_at, reminder_delay_days)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), t.name, t.category, t.recurrenceDays,
			today.AddDays(t.recurrenceDays).String(), today.String(),
			model.DefaultReminderDelayDays); err != nil {
			return err
		}
	}

	return nil
}
