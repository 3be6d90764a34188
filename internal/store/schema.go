package store

// Schema v1 - Initial database schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Canonical player records (one row per team/season/name)
CREATE TABLE IF NOT EXISTS players (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  team TEXT NOT NULL,
  season INTEGER NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  position TEXT,
  jersey_number INTEGER,
  height_in INTEGER,
  weight_lb INTEGER,
  birthdate TEXT,
  birthplace TEXT,
  citizenship TEXT,
  hometown_city TEXT,
  hometown_state TEXT,
  high_school TEXT,
  high_school_city TEXT,
  high_school_state TEXT,
  headshot_url TEXT,
  bio_url TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(team, season, first_name, last_name)
);

CREATE INDEX IF NOT EXISTS idx_players_team_season ON players(team, season);
CREATE INDEX IF NOT EXISTS idx_players_last_name ON players(last_name);

-- Match schedule rows (one row per external or derived match id)
CREATE TABLE IF NOT EXISTS schedules (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  match_id TEXT UNIQUE NOT NULL,
  season INTEGER,
  match_date TEXT,
  match_time TEXT,
  home_team TEXT,
  away_team TEXT,
  venue TEXT,
  competition TEXT,
  broadcast TEXT,
  status TEXT NOT NULL DEFAULT 'scheduled',
  home_score INTEGER,
  away_score INTEGER,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_schedules_season_date ON schedules(season, match_date);
CREATE INDEX IF NOT EXISTS idx_schedules_status ON schedules(status);

-- Canonical high-school reference entries (one row per raw spelling)
CREATE TABLE IF NOT EXISTS high_schools (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  raw_name TEXT UNIQUE NOT NULL,
  normalized_name TEXT NOT NULL,
  canonical_name TEXT,
  city TEXT,
  state TEXT,
  catalog_id TEXT,
  match_status TEXT NOT NULL DEFAULT 'pending',
  confidence REAL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_high_schools_normalized ON high_schools(normalized_name);
CREATE INDEX IF NOT EXISTS idx_high_schools_status ON high_schools(match_status);

-- Append-only audit log of fetch attempts
CREATE TABLE IF NOT EXISTS scrape_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT,
  source TEXT NOT NULL,
  team_slug TEXT,
  url TEXT,
  status TEXT NOT NULL,
  records_found INTEGER DEFAULT 0,
  error_message TEXT,
  scraped_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scrape_log_source ON scrape_log(source);
CREATE INDEX IF NOT EXISTS idx_scrape_log_status ON scrape_log(status);
CREATE INDEX IF NOT EXISTS idx_scrape_log_scraped_at ON scrape_log(scraped_at);
`

// Schema v2 - High-school provenance, per-field source tracking, raw team
// names and match URLs on schedules
const schemaV2 = `
ALTER TABLE players ADD COLUMN high_school_source_url TEXT;
ALTER TABLE players ADD COLUMN high_school_source_name TEXT;

ALTER TABLE schedules ADD COLUMN home_team_raw TEXT;
ALTER TABLE schedules ADD COLUMN away_team_raw TEXT;
ALTER TABLE schedules ADD COLUMN match_url TEXT;

-- Which source supplied the current value of each player field
CREATE TABLE IF NOT EXISTS field_sources (
  player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
  field TEXT NOT NULL,
  source TEXT NOT NULL,
  rank INTEGER NOT NULL,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (player_id, field)
);

CREATE INDEX IF NOT EXISTS idx_field_sources_source ON field_sources(source);
`
