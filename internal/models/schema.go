package models

const (
	TableCalendarEntries = "calendar_entries"
	TableNotes           = "notes"
	TablePeople          = "people"
)

// SchemaStatements creates the relational schema. Every statement is
// idempotent so the list is executed on each open. exercise_id is a plain
// integer column, not a foreign key.
var SchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS calendar_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  exercise_id INTEGER NOT NULL,
  note TEXT,
  created_at TEXT DEFAULT (datetime('now')),
  updated_at TEXT DEFAULT (datetime('now'))
)`,
	`CREATE TABLE IF NOT EXISTS notes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exercise_id INTEGER NOT NULL,
  content TEXT NOT NULL,
  created_at TEXT DEFAULT (datetime('now')),
  updated_at TEXT DEFAULT (datetime('now'))
)`,
	`CREATE TABLE IF NOT EXISTS people (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  exercise_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  notes TEXT,
  forgiven INTEGER DEFAULT 0,
  created_at TEXT DEFAULT (datetime('now')),
  updated_at TEXT DEFAULT (datetime('now'))
)`,
	`CREATE INDEX IF NOT EXISTS calendar_entries_by_exercise ON calendar_entries (exercise_id)`,
	`CREATE INDEX IF NOT EXISTS calendar_entries_by_date ON calendar_entries (date)`,
	`CREATE INDEX IF NOT EXISTS notes_by_exercise ON notes (exercise_id)`,
	`CREATE INDEX IF NOT EXISTS people_by_exercise ON people (exercise_id)`,
	`CREATE INDEX IF NOT EXISTS people_by_name ON people (name)`,
}
