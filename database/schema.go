package database

// schema is applied on every open. CREATE TABLE IF NOT EXISTS is the only migration step:
// existing definitions and rows are never touched.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT 'User',
		profileImage TEXT,
		currency TEXT DEFAULT 'EUR',
		masterPasswordHash TEXT,
		setupCompleted INTEGER DEFAULT 0,
		createdAt TEXT,
		updatedAt TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS income (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		amount REAL NOT NULL,
		date TEXT NOT NULL,
		category TEXT,
		provider TEXT,
		icon TEXT,
		createdAt TEXT,
		updatedAt TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS outgoing (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		amount REAL NOT NULL,
		date TEXT NOT NULL,
		category TEXT,
		provider TEXT,
		recurring INTEGER DEFAULT 0,
		billingCycle TEXT,
		nextPaymentDate TEXT,
		icon TEXT,
		createdAt TEXT,
		updatedAt TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS payment_providers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		accountNumber TEXT,
		notes TEXT,
		icon TEXT,
		createdAt TEXT,
		updatedAt TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS image_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		imageKey TEXT UNIQUE NOT NULL,
		data BLOB NOT NULL,
		mimeType TEXT NOT NULL,
		createdAt TEXT
	)`,
}

// Tables lists the tables created by the bootstrap.
var Tables = []string{"settings", "income", "outgoing", "payment_providers", "image_cache"}
