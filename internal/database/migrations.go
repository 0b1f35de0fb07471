package database

// Migration statements. All statements use IF NOT EXISTS so RunMigrations
// stays idempotent.

const migrationUsers = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const migrationSessions = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const migrationAssetAccounts = `
CREATE TABLE IF NOT EXISTS asset_accounts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, name)
);`

const migrationAssets = `
CREATE TABLE IF NOT EXISTS assets (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES asset_accounts(id) ON DELETE CASCADE,
	code TEXT NOT NULL,
	account_type TEXT NOT NULL,
	units REAL NOT NULL DEFAULT 0,
	cost REAL NOT NULL DEFAULT 0,
	current_value REAL NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'TWD',
	sort_order INTEGER NOT NULL DEFAULT 0
);`

const migrationCashflowRecords = `
CREATE TABLE IF NOT EXISTS cashflow_records (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
	category TEXT NOT NULL,
	amount REAL NOT NULL,
	currency TEXT NOT NULL DEFAULT 'TWD',
	description TEXT NOT NULL DEFAULT '',
	account_id TEXT NOT NULL DEFAULT '',
	account_name TEXT NOT NULL DEFAULT '',
	is_recurring INTEGER NOT NULL DEFAULT 0,
	recurrence_day INTEGER,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const migrationBudgets = `
CREATE TABLE IF NOT EXISTS budgets (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	month TEXT NOT NULL,
	category TEXT NOT NULL,
	amount REAL NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const migrationGoals = `
CREATE TABLE IF NOT EXISTS goals (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	target_amount REAL NOT NULL,
	current_amount REAL NOT NULL DEFAULT 0,
	target_date TEXT NOT NULL DEFAULT '',
	account_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const migrationSettings = `
CREATE TABLE IF NOT EXISTS settings (
	user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	custom_income TEXT NOT NULL DEFAULT '[]',
	custom_expense TEXT NOT NULL DEFAULT '[]',
	manual_rate REAL,
	last_recurring_check TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const migrationCurrencyRates = `
CREATE TABLE IF NOT EXISTS currency_rates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	from_currency TEXT NOT NULL,
	to_currency TEXT NOT NULL,
	rate REAL NOT NULL,
	fetched_at TIMESTAMP NOT NULL,
	UNIQUE(from_currency, to_currency)
);`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_asset_accounts_user ON asset_accounts(user_id);
CREATE INDEX IF NOT EXISTS idx_assets_account ON assets(account_id);
CREATE INDEX IF NOT EXISTS idx_cashflow_user_date ON cashflow_records(user_id, date);
CREATE INDEX IF NOT EXISTS idx_budgets_user_month ON budgets(user_id, month);
CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id);`
