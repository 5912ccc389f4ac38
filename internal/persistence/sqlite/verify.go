// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// CheckMode selects the integrity pragma.
type CheckMode string

const (
	CheckQuick CheckMode = "quick"
	CheckFull  CheckMode = "full"
)

// VerifyIntegrity opens path read-only and runs quick_check or integrity_check.
// A healthy database returns no problems.
func VerifyIntegrity(ctx context.Context, path string, mode CheckMode) ([]string, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(2000)", path))
	if err != nil {
		return nil, fmt.Errorf("open database for verification: %w", err)
	}
	defer func() { _ = db.Close() }()

	pragma := "PRAGMA quick_check"
	if mode == CheckFull {
		pragma = "PRAGMA integrity_check"
	}

	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return nil, fmt.Errorf("integrity pragma failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scan integrity row: %w", err)
		}
		problems = append(problems, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(problems) == 1 && strings.EqualFold(problems[0], "ok"):
		return nil, nil
	case len(problems) == 0:
		return []string{"integrity check returned no rows"}, nil
	}
	return problems, nil
}
