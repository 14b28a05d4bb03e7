package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/playperu/quizboard/internal/quizboard"
)

// Questions is the content provider backed by the questions table.
type Questions struct {
	db *sql.DB
}

func NewQuestions(db *sql.DB) *Questions {
	return &Questions{db: db}
}

// QuestionsFor returns every question for category and level whose id is
// not in exclude. The exclusion list is passed as one JSON array so the
// query shape does not depend on its length.
func (q *Questions) QuestionsFor(ctx context.Context, category quizboard.Category, level quizboard.Level, exclude []string) ([]quizboard.QuestionRecord, error) {
	if exclude == nil {
		exclude = []string{}
	}
	excluded, err := json.Marshal(exclude)
	if err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT json(data) FROM questions
		 WHERE category = ? AND level = ?
		   AND id NOT IN (SELECT value FROM json_each(?))
		 ORDER BY id`,
		category, level.String(), string(excluded),
	)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var out []quizboard.QuestionRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec quizboard.QuestionRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding question: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Put inserts or replaces a question record.
func (q *Questions) Put(ctx context.Context, rec quizboard.QuestionRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO questions (id, category, level, data) VALUES (?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET category = excluded.category, level = excluded.level, data = excluded.data`,
		rec.ID, rec.Category, rec.Level.String(), string(data),
	)
	return err
}

// Count returns the number of stored questions.
func (q *Questions) Count(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

func validateRecord(rec quizboard.QuestionRecord) error {
	switch {
	case rec.ID == "":
		return fmt.Errorf("question id is required: %w", quizboard.ErrInvalidInput)
	case !rec.Category.Valid():
		return fmt.Errorf("question %s: unknown category %q: %w", rec.ID, rec.Category, quizboard.ErrInvalidInput)
	case !rec.Level.Valid():
		return fmt.Errorf("question %s: invalid level: %w", rec.ID, quizboard.ErrInvalidInput)
	case rec.CorrectIndex < 0 || rec.CorrectIndex >= quizboard.AnswerCount:
		return fmt.Errorf("question %s: correct index %d out of range: %w", rec.ID, rec.CorrectIndex, quizboard.ErrInvalidInput)
	}
	return nil
}

//go:embed seed_questions.json
var seedQuestions []byte

// SeedDemo loads the bundled demo bank if the table is empty.
func (q *Questions) SeedDemo(ctx context.Context) (int, error) {
	n, err := q.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	var recs []quizboard.QuestionRecord
	if err := json.Unmarshal(seedQuestions, &recs); err != nil {
		return 0, fmt.Errorf("decoding seed questions: %w", err)
	}
	for _, rec := range recs {
		if err := q.Put(ctx, rec); err != nil {
			return 0, fmt.Errorf("seeding question %s: %w", rec.ID, err)
		}
	}
	return len(recs), nil
}
