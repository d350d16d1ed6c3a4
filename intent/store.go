package intent

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists training examples and a log of every classified query.
// Feedback rows in the query log are how misclassifications become new
// training data.
type Store struct {
	db *sql.DB
}

type Example struct {
	Text   string
	Intent string
}

type UncertainQuery struct {
	Text       string
	Confidence float64
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open intent db: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init intent db: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS training_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			intent TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			source TEXT DEFAULT 'user'
		)`,
		`CREATE TABLE IF NOT EXISTS queries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			predicted_intent TEXT,
			correct_intent TEXT,
			confidence REAL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) AddTraining(text, intent, source string) error {
	_, err := s.db.Exec(
		"INSERT INTO training_data (text, intent, source) VALUES (?, ?, ?)",
		text, intent, source,
	)
	return err
}

func (s *Store) TrainingData() ([]Example, error) {
	rows, err := s.db.Query("SELECT text, intent FROM training_data")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var examples []Example
	for rows.Next() {
		var ex Example
		if err := rows.Scan(&ex.Text, &ex.Intent); err != nil {
			return nil, err
		}
		examples = append(examples, ex)
	}
	return examples, rows.Err()
}

func (s *Store) TrainingCounts() (map[string]int, error) {
	rows, err := s.db.Query("SELECT intent, COUNT(*) FROM training_data GROUP BY intent")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, err
		}
		counts[intent] = n
	}
	return counts, rows.Err()
}

func (s *Store) TrainingCount() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM training_data").Scan(&n)
	return n, err
}

func (s *Store) HasTraining(text, intent string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM training_data WHERE text = ? AND intent = ?",
		text, intent,
	).Scan(&n)
	return n > 0, err
}

func (s *Store) LogQuery(text, predicted string, confidence float64) error {
	_, err := s.db.Exec(
		"INSERT INTO queries (text, predicted_intent, confidence) VALUES (?, ?, ?)",
		text, predicted, confidence,
	)
	return err
}

// SetCorrectIntent marks the most recent log entry for text with the intent
// it should have been.
func (s *Store) SetCorrectIntent(text, correct string) error {
	_, err := s.db.Exec(
		`UPDATE queries SET correct_intent = ?
		 WHERE id = (SELECT id FROM queries WHERE text = ? ORDER BY id DESC LIMIT 1)`,
		correct, text,
	)
	return err
}

// Uncertain returns logged queries below the confidence threshold that
// nobody has corrected yet, newest first.
func (s *Store) Uncertain(threshold float64) ([]UncertainQuery, error) {
	rows, err := s.db.Query(
		`SELECT text, confidence FROM queries
		 WHERE confidence < ? AND correct_intent IS NULL
		 ORDER BY id DESC`,
		threshold,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var queries []UncertainQuery
	for rows.Next() {
		var q UncertainQuery
		if err := rows.Scan(&q.Text, &q.Confidence); err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
