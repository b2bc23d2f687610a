package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// marshalPhases converts a phase permutation to JSON TEXT for storage.
func marshalPhases(phases []int64) (string, error) {
	if phases == nil {
		phases = []int64{}
	}
	data, err := json.Marshal(phases)
	if err != nil {
		return "", fmt.Errorf("marshal phases: %w", err)
	}
	return string(data), nil
}

func unmarshalPhases(data string) ([]int64, error) {
	var phases []int64
	if err := json.Unmarshal([]byte(data), &phases); err != nil {
		return nil, fmt.Errorf("unmarshal phases: %w", err)
	}
	return phases, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
