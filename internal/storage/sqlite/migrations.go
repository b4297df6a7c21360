package sqlite

import "database/sql"

// schema sets up the group and item tables. It runs on startup to ensure tables exist.
// Members are stored as a JSON array to keep their order.
// Items carry no foreign key: item rows may reference a group ID that was
// generated client-side and never reached the groups table.
const schema = `
CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    members TEXT NOT NULL DEFAULT '[]',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id TEXT NOT NULL,
    item_name TEXT NOT NULL,
    quantity INTEGER,
    assignee TEXT NOT NULL DEFAULT '',
    UNIQUE (group_id, item_name)
);

CREATE INDEX IF NOT EXISTS idx_items_group_id ON items(group_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
