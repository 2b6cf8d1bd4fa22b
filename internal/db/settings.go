package db

import (
	"database/sql"
	"strconv"

	"github.com/dori/neverforget/internal/model"
)

// Setting keys and defaults. An absent row falls back to the default.
const (
	NotificationTimeKey     = "notification_time"
	ReminderDelayDaysKey    = "reminder_delay_days"
	DefaultNotificationTime = "11:00"
)

// GetSetting returns a setting value, or nil if the key is absent
func (db *DB) GetSetting(key string) (*string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// SetSetting inserts or replaces a setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// DeleteSetting removes a setting, reverting it to its default
func (db *DB) DeleteSetting(key string) error {
	_, err := db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	db.notifyWatchers()
	return nil
}

// NotificationTime returns the HH:MM local time at which notifications fire
func (db *DB) NotificationTime() (string, error) {
	v, err := db.GetSetting(NotificationTimeKey)
	if err != nil {
		return "", err
	}
	if v == nil {
		return DefaultNotificationTime, nil
	}
	return *v, nil
}

// ReminderDelayDays returns the global delay between the due notification
// and the follow-up reminder
func (db *DB) ReminderDelayDays() (int, error) {
	v, err := db.GetSetting(ReminderDelayDaysKey)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return model.DefaultReminderDelayDays, nil
	}
	days, err := strconv.Atoi(*v)
	if err != nil || days <= 0 {
		return model.DefaultReminderDelayDays, nil
	}
	return days, nil
}
