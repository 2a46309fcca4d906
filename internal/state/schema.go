package state

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	version INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS writes (
	id INTEGER PRIMARY KEY,
	document TEXT NOT NULL,
	version INTEGER NOT NULL,
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	written_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS writes_document ON writes(document, id);
`
