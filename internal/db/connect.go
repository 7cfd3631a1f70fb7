package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:attainment.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/attainment?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS program_outcomes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS course_outcomes (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  code TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  target_percent REAL,
  UNIQUE (course_id, code)
);

CREATE TABLE IF NOT EXISTS assessments (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  category TEXT NOT NULL,
  max_marks REAL NOT NULL DEFAULT 0,
  UNIQUE (course_id, category)
);

CREATE TABLE IF NOT EXISTS assessment_components (
  id TEXT PRIMARY KEY,
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  outcome_id TEXT NOT NULL REFERENCES course_outcomes(id) ON DELETE CASCADE,
  label TEXT NOT NULL DEFAULT '',
  max_marks REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS student_marks (
  component_id TEXT NOT NULL REFERENCES assessment_components(id) ON DELETE CASCADE,
  roll_no TEXT NOT NULL,
  marks REAL NOT NULL,
  PRIMARY KEY (component_id, roll_no)
);

CREATE TABLE IF NOT EXISTS co_po_map (
  outcome_id TEXT NOT NULL REFERENCES course_outcomes(id) ON DELETE CASCADE,
  program_outcome_id TEXT NOT NULL REFERENCES program_outcomes(id) ON DELETE CASCADE,
  correlation INTEGER NOT NULL CHECK (correlation BETWEEN 1 AND 3),
  PRIMARY KEY (outcome_id, program_outcome_id)
);

CREATE TABLE IF NOT EXISTS survey_aggregates (
  scope TEXT NOT NULL,
  ref_id TEXT NOT NULL,
  responses INTEGER NOT NULL DEFAULT 0,
  average_score REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (scope, ref_id)
);

CREATE TABLE IF NOT EXISTS engine_config (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  co_target_marks_percent REAL NOT NULL,
  level1_threshold REAL NOT NULL,
  level2_threshold REAL NOT NULL,
  level3_threshold REAL NOT NULL,
  ia1_weight REAL NOT NULL,
  ia2_weight REAL NOT NULL,
  end_sem_weight REAL NOT NULL,
  direct_weight REAL NOT NULL,
  indirect_weight REAL NOT NULL,
  po_target_level REAL NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS co_attainment (
  outcome_id TEXT PRIMARY KEY REFERENCES course_outcomes(id) ON DELETE CASCADE,
  course_id TEXT NOT NULL,
  code TEXT NOT NULL,
  ia1_percent REAL, ia1_level INTEGER,
  ia2_percent REAL, ia2_level INTEGER,
  end_sem_percent REAL, end_sem_level INTEGER,
  direct_score REAL,
  indirect_score REAL,
  final_score REAL,
  level INTEGER NOT NULL DEFAULT 0,
  computed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS po_attainment (
  program_outcome_id TEXT PRIMARY KEY REFERENCES program_outcomes(id) ON DELETE CASCADE,
  direct_score REAL NOT NULL,
  indirect_score REAL,
  final_score REAL NOT NULL,
  level INTEGER NOT NULL DEFAULT 0,
  contributing INTEGER NOT NULL DEFAULT 0,
  computed_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS program_outcomes (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS course_outcomes (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  code TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  target_percent DOUBLE PRECISION,
  UNIQUE (course_id, code)
);

CREATE TABLE IF NOT EXISTS assessments (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  category TEXT NOT NULL,
  max_marks DOUBLE PRECISION NOT NULL DEFAULT 0,
  UNIQUE (course_id, category)
);

CREATE TABLE IF NOT EXISTS assessment_components (
  id TEXT PRIMARY KEY,
  assessment_id TEXT NOT NULL REFERENCES assessments(id) ON DELETE CASCADE,
  outcome_id TEXT NOT NULL REFERENCES course_outcomes(id) ON DELETE CASCADE,
  label TEXT NOT NULL DEFAULT '',
  max_marks DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS student_marks (
  component_id TEXT NOT NULL REFERENCES assessment_components(id) ON DELETE CASCADE,
  roll_no TEXT NOT NULL,
  marks DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (component_id, roll_no)
);

CREATE TABLE IF NOT EXISTS co_po_map (
  outcome_id TEXT NOT NULL REFERENCES course_outcomes(id) ON DELETE CASCADE,
  program_outcome_id TEXT NOT NULL REFERENCES program_outcomes(id) ON DELETE CASCADE,
  correlation INTEGER NOT NULL CHECK (correlation BETWEEN 1 AND 3),
  PRIMARY KEY (outcome_id, program_outcome_id)
);

CREATE TABLE IF NOT EXISTS survey_aggregates (
  scope TEXT NOT NULL,
  ref_id TEXT NOT NULL,
  responses INTEGER NOT NULL DEFAULT 0,
  average_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  PRIMARY KEY (scope, ref_id)
);

CREATE TABLE IF NOT EXISTS engine_config (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  co_target_marks_percent DOUBLE PRECISION NOT NULL,
  level1_threshold DOUBLE PRECISION NOT NULL,
  level2_threshold DOUBLE PRECISION NOT NULL,
  level3_threshold DOUBLE PRECISION NOT NULL,
  ia1_weight DOUBLE PRECISION NOT NULL,
  ia2_weight DOUBLE PRECISION NOT NULL,
  end_sem_weight DOUBLE PRECISION NOT NULL,
  direct_weight DOUBLE PRECISION NOT NULL,
  indirect_weight DOUBLE PRECISION NOT NULL,
  po_target_level DOUBLE PRECISION NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS co_attainment (
  outcome_id TEXT PRIMARY KEY REFERENCES course_outcomes(id) ON DELETE CASCADE,
  course_id TEXT NOT NULL,
  code TEXT NOT NULL,
  ia1_percent DOUBLE PRECISION, ia1_level INTEGER,
  ia2_percent DOUBLE PRECISION, ia2_level INTEGER,
  end_sem_percent DOUBLE PRECISION, end_sem_level INTEGER,
  direct_score DOUBLE PRECISION,
  indirect_score DOUBLE PRECISION,
  final_score DOUBLE PRECISION,
  level INTEGER NOT NULL DEFAULT 0,
  computed_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS po_attainment (
  program_outcome_id TEXT PRIMARY KEY REFERENCES program_outcomes(id) ON DELETE CASCADE,
  direct_score DOUBLE PRECISION NOT NULL,
  indirect_score DOUBLE PRECISION,
  final_score DOUBLE PRECISION NOT NULL,
  level INTEGER NOT NULL DEFAULT 0,
  contributing INTEGER NOT NULL DEFAULT 0,
  computed_at BIGINT NOT NULL
);
`
