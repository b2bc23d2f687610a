package store

import (
	"context"
	"database/sql"
	"fmt"
)

// BeginSearch records a new search with status "running" and returns its
// ID. The search's created_seq is one past the largest in the store.
func (s *Store) BeginSearch(ctx context.Context, p SearchParams) (string, error) {
	if p.Stages < 1 {
		return "", fmt.Errorf("begin search: stage count must be at least 1, got %d", p.Stages)
	}
	workers := max(p.Workers, 1)

	id := s.ids.Generate()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO searches
		(id, program_hash, program_len, stages, feedback, workers, status, created_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(created_seq), 0) + 1 FROM searches))
	`,
		id,
		p.ProgramHash,
		p.ProgramLen,
		p.Stages,
		p.Feedback,
		workers,
		string(StatusRunning),
	)
	if err != nil {
		return "", fmt.Errorf("begin search: %w", err)
	}
	return id, nil
}

// WriteEvaluation records one permutation of a search.
// Uses ON CONFLICT DO NOTHING for idempotency: writing the same
// (search, seq) twice keeps the first row.
//
// The search referenced by ev.SearchID must exist (foreign key constraint).
func (s *Store) WriteEvaluation(ctx context.Context, ev Evaluation) error {
	phasesJSON, err := marshalPhases(ev.Phases)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}

	var fault sql.NullString
	if ev.Fault != "" {
		fault = sql.NullString{String: ev.Fault, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations
		(search_id, seq, phases, output, fault)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ev.SearchID,
		ev.Seq,
		phasesJSON,
		nullInt64(ev.Output),
		fault,
	)
	if err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	return nil
}

// CompleteSearch stores the outcome of a search. Returns an error wrapping
// sql.ErrNoRows if the search does not exist.
func (s *Store) CompleteSearch(ctx context.Context, id string, out SearchOutcome) error {
	var phases sql.NullString
	if out.BestPhases != nil {
		data, err := marshalPhases(out.BestPhases)
		if err != nil {
			return fmt.Errorf("complete search: %w", err)
		}
		phases = sql.NullString{String: data, Valid: true}
	}

	status := out.Status
	if status == "" {
		status = StatusComplete
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE searches
		SET best_output = ?, best_phases = ?, evaluated = ?, faulted = ?, status = ?
		WHERE id = ?
	`,
		nullInt64(out.BestOutput),
		phases,
		out.Evaluated,
		out.Faulted,
		string(status),
		id,
	)
	if err != nil {
		return fmt.Errorf("complete search: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete search: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("complete search %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
