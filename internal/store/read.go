package store

import (
	"context"
	"database/sql"
	"fmt"
)

const searchColumns = `
	id, program_hash, program_len, stages, feedback, workers,
	best_output, best_phases, evaluated, faulted, status, created_seq
`

// ReadSearch retrieves a single search by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSearch(ctx context.Context, id string) (Search, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+searchColumns+` FROM searches WHERE id = ?`, id)
	return scanSearch(row)
}

// ListSearches returns the most recent searches, newest first. A limit
// below 1 returns every search.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSearches(ctx context.Context, limit int) ([]Search, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+searchColumns+`
		FROM searches
		ORDER BY created_seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer rows.Close()

	searches := []Search{}
	for rows.Next() {
		srch, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, srch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searches: %w", err)
	}
	return searches, nil
}

// ReadEvaluations returns every evaluation of a search in enumeration
// order.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadEvaluations(ctx context.Context, searchID string) ([]Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT search_id, seq, phases, output, fault
		FROM evaluations
		WHERE search_id = ?
		ORDER BY seq ASC
	`, searchID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []Evaluation{}
	for rows.Next() {
		var (
			ev     Evaluation
			phases string
			output sql.NullInt64
			fault  sql.NullString
		)
		if err := rows.Scan(&ev.SearchID, &ev.Seq, &phases, &output, &fault); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		if ev.Phases, err = unmarshalPhases(phases); err != nil {
			return nil, err
		}
		ev.Output = int64Ptr(output)
		ev.Fault = fault.String
		evals = append(evals, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSearch(row rowScanner) (Search, error) {
	var (
		srch       Search
		bestOutput sql.NullInt64
		bestPhases sql.NullString
		status     string
	)
	err := row.Scan(
		&srch.ID,
		&srch.ProgramHash,
		&srch.ProgramLen,
		&srch.Stages,
		&srch.Feedback,
		&srch.Workers,
		&bestOutput,
		&bestPhases,
		&srch.Evaluated,
		&srch.Faulted,
		&status,
		&srch.CreatedSeq,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Search{}, err
		}
		return Search{}, fmt.Errorf("scan search: %w", err)
	}

	srch.BestOutput = int64Ptr(bestOutput)
	if bestPhases.Valid {
		if srch.BestPhases, err = unmarshalPhases(bestPhases.String); err != nil {
			return Search{}, err
		}
	}
	srch.Status = Status(status)
	return srch, nil
}
