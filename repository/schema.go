package repository

const schemaSQL = `
CREATE TABLE IF NOT EXISTS simulations (
    id                   TEXT PRIMARY KEY,
    principal            DOUBLE PRECISION NOT NULL,
    annual_rate          DOUBLE PRECISION NOT NULL,
    duration_years       INTEGER NOT NULL,
    monthly_payment      DOUBLE PRECISION NOT NULL,
    total_interest_cost  DOUBLE PRECISION NOT NULL,
    total_repaid         DOUBLE PRECISION NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rate_quotes (
    id                   TEXT PRIMARY KEY,
    source               TEXT NOT NULL,
    duration_label       TEXT NOT NULL,
    duration_years       INTEGER NOT NULL,
    rate_percent         DOUBLE PRECISION NOT NULL,
    fetched_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id                   TEXT PRIMARY KEY,
    ip                   TEXT NOT NULL,
    user_agent           TEXT NOT NULL,
    started_at           TEXT NOT NULL,
    last_seen_at         TEXT NOT NULL,
    request_count        INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_simulations_created ON simulations(created_at);
CREATE INDEX IF NOT EXISTS idx_rate_quotes_fetched ON rate_quotes(fetched_at);
CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen_at);
`
