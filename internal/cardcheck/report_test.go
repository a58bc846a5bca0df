package cardcheck

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterPrintsAndRecords(t *testing.T) {
	var out bytes.Buffer
	res := &Result{}
	p := &reporter{out: &out, result: res}

	p.observe(CheckIAVisible, "IA button visible", true)
	p.observe(CheckTrocarVisible, "Trocar button visible", false)
	p.line("Clicking card body...")
	p.pass(CheckSheetOpened, "Bottom sheet 'Ações do Cliente' opened successfully.")

	assert.Equal(t, "IA button visible: true\n"+
		"Trocar button visible: false\n"+
		"Clicking card body...\n"+
		"Bottom sheet 'Ações do Cliente' opened successfully.\n", out.String())

	require.Len(t, res.Checks, 3)
	assert.Equal(t, Check{Name: CheckTrocarVisible, Passed: false, Detail: "visible=false"}, res.Checks[1])

	c, ok := res.Check(CheckSheetOpened)
	require.True(t, ok)
	assert.True(t, c.Passed)
	assert.False(t, res.Failed())
}

func TestReporterFail(t *testing.T) {
	var out bytes.Buffer
	res := &Result{}
	p := &reporter{out: &out, result: res}

	p.fail(errors.New("desktop layout: boom"))

	assert.Equal(t, "Test failed: desktop layout: boom\n", out.String())
	assert.True(t, res.Failed())
}

func TestResultDuration(t *testing.T) {
	start := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	res := &Result{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}
	assert.Equal(t, 1500*time.Millisecond, res.Duration())

	_, ok := res.Check("missing")
	assert.False(t, ok)
}
