package learner

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/blackms/taskrouter-go/internal/domain/routing"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// Journal persists the append-only outcome log and model snapshot history in
// SQLite. The in-memory engine works without it; the caller decides whether
// outcomes survive restarts.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a journal database at the given path.
func NewJournal(dbPath string) (*Journal, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".data", "taskrouter.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS outcomes (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			original_assignee TEXT NOT NULL,
			final_assignee TEXT NOT NULL,
			was_reassigned INTEGER NOT NULL,
			successful INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			domain TEXT,
			tags TEXT,
			complexity_bucket INTEGER NOT NULL,
			has_detailed_specs INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outcomes_recorded_at ON outcomes(recorded_at);

		CREATE TABLE IF NOT EXISTS models (
			version INTEGER PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return nil
}

// Append writes an outcome to the journal.
func (j *Journal) Append(outcome shared.TaskOutcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	tags, err := json.Marshal(outcome.Tags)
	if err != nil {
		return fmt.Errorf("failed to serialize tags: %w", err)
	}

	_, err = j.db.Exec(`
		INSERT INTO outcomes (
			id, task_id, original_assignee, final_assignee, was_reassigned,
			successful, failed, domain, tags, complexity_bucket,
			has_detailed_specs, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shared.GenerateID("outcome"),
		outcome.TaskID,
		string(outcome.OriginalAssignee),
		string(outcome.FinalAssignee),
		boolToInt(outcome.WasReassigned),
		boolToInt(outcome.Successful),
		boolToInt(outcome.Failed),
		outcome.Domain,
		string(tags),
		outcome.ComplexityBucket,
		boolToInt(outcome.HasDetailedSpecs),
		outcome.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append outcome: %w", err)
	}
	return nil
}

// LoadRecent returns the most recent outcomes in chronological order, up to
// limit. Used to warm the learner's window at startup.
func (j *Journal) LoadRecent(limit int) ([]shared.TaskOutcome, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if limit <= 0 {
		limit = 1000
	}

	rows, err := j.db.Query(`
		SELECT task_id, original_assignee, final_assignee, was_reassigned,
		       successful, failed, domain, tags, complexity_bucket,
		       has_detailed_specs, recorded_at
		FROM outcomes
		ORDER BY recorded_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []shared.TaskOutcome
	for rows.Next() {
		var o shared.TaskOutcome
		var original, final, tags string
		var reassigned, successful, failed, specs int
		if err := rows.Scan(&o.TaskID, &original, &final, &reassigned,
			&successful, &failed, &o.Domain, &tags, &o.ComplexityBucket,
			&specs, &o.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.OriginalAssignee = shared.Pool(original)
		o.FinalAssignee = shared.Pool(final)
		o.WasReassigned = reassigned != 0
		o.Successful = successful != 0
		o.Failed = failed != 0
		o.HasDetailedSpecs = specs != 0
		if tags != "" {
			if err := json.Unmarshal([]byte(tags), &o.Tags); err != nil {
				return nil, fmt.Errorf("failed to parse tags: %w", err)
			}
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, k := 0, len(outcomes)-1; i < k; i, k = i+1, k-1 {
		outcomes[i], outcomes[k] = outcomes[k], outcomes[i]
	}
	return outcomes, nil
}

// SaveModel stores a published model snapshot.
func (j *Journal) SaveModel(m *routing.Model) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	_, err = j.db.Exec(`INSERT OR REPLACE INTO models (version, payload, updated_at) VALUES (?, ?, ?)`,
		m.Version, string(payload), m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	return nil
}

// LoadLatestModel returns the most recently saved model snapshot, or nil when
// none has been saved.
func (j *Journal) LoadLatestModel() (*routing.Model, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var payload string
	err := j.db.QueryRow(`SELECT payload FROM models ORDER BY version DESC LIMIT 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	var m routing.Model
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	return &m, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
