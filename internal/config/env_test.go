// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseHelpers(t *testing.T) {
	t.Setenv("RECAP_T_STR", "value")
	t.Setenv("RECAP_T_EMPTY", "")
	t.Setenv("RECAP_T_INT", "42")
	t.Setenv("RECAP_T_BADINT", "forty")
	t.Setenv("RECAP_T_FLOAT", "0.25")
	t.Setenv("RECAP_T_DUR", "90s")
	t.Setenv("RECAP_T_BOOL", "YES")
	t.Setenv("RECAP_T_BADBOOL", "maybe")

	assert.Equal(t, "value", ParseString("RECAP_T_STR", "d"))
	assert.Equal(t, "d", ParseString("RECAP_T_EMPTY", "d"))
	assert.Equal(t, "d", ParseString("RECAP_T_UNSET", "d"))
	assert.Equal(t, 42, ParseInt("RECAP_T_INT", 1))
	assert.Equal(t, 1, ParseInt("RECAP_T_BADINT", 1))
	assert.Equal(t, 0.25, ParseFloat("RECAP_T_FLOAT", 1))
	assert.Equal(t, 90*time.Second, ParseDuration("RECAP_T_DUR", time.Second))
	assert.True(t, ParseBool("RECAP_T_BOOL", false))
	assert.True(t, ParseBool("RECAP_T_BADBOOL", true))
}
