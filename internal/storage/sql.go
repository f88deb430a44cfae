package storage

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      scan_id,
                      device,
                      strategy,
                      start_freq,
                      end_freq,
                      step_freq,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    scan_id,
    device,
    strategy,
    start_freq,
    end_freq,
    step_freq,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    scan_id,
    device,
    strategy,
    start_freq,
    end_freq,
    step_freq,
    config
FROM sessions
ORDER BY start_time`

	insertResultSQL = `
INSERT INTO results (session_id,
                     timestamp,
                     frequency,
                     peak_power,
                     average_power,
                     num_bins,
                     spectrum)
VALUES `

	selectResultsSQL = `
SELECT
    id,
    session_id,
    timestamp,
    frequency,
    peak_power,
    average_power,
    num_bins,
    spectrum
FROM results
WHERE
    session_id = ?
ORDER BY frequency, timestamp`

	initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_results_session ON results (session_id);
CREATE INDEX IF NOT EXISTS idx_results_frequency ON results (session_id, frequency);`
)

//go:embed schema.sql
var initSchemaSQL string
