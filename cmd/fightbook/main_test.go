package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fightbook/internal/arena"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	_, stderr, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "usage: fightbook")
}

func TestRun_UnknownCommand(t *testing.T) {
	_, stderr, err := runCLI(t, "spar")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, `unknown command "spar"`)
}

func TestRun_Version(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fightbook dev\n", out)
}

func TestInitValidateFight(t *testing.T) {
	dir := t.TempDir()

	out, _, err := runCLI(t, "init", "Iron Mike", "striker", "-dir", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, "iron-mike.yaml")
	assert.Contains(t, out, path)

	pf, err := fighter.LoadProfileFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Iron Mike", pf.Name)
	assert.Equal(t, "striker", pf.Archetype)
	assert.NotEmpty(t, pf.ID)

	_, _, err = runCLI(t, "init", "-dir", dir, "Ghost")
	require.NoError(t, err)

	_, _, err = runCLI(t, "init", "Iron Mike", "-dir", dir)
	assert.Error(t, err, "existing profile must not be overwritten")

	out, _, err = runCLI(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (23 stats")

	ghost := filepath.Join(dir, "ghost.yaml")
	first, _, err := runCLI(t, "fight", path, ghost, "-seed", "42", "-plain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "[Round 1]\n"))
	assert.Contains(t, first, "Iron Mike enters the cage")
	assert.Contains(t, first, "Result: ")
	assert.NotContains(t, first, "\033[")

	again, _, err := runCLI(t, "fight", "-seed", "42", "-plain", path, ghost)
	require.NoError(t, err)
	assert.Equal(t, first, again, "a seeded match replays identically")

	colored, _, err := runCLI(t, "fight", path, ghost, "-seed", "42")
	require.NoError(t, err)
	assert.Contains(t, colored, "\033[")
}

func TestValidate_ReportsViolations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Bad\nstats:\n  striking: 99\n  chin: 10\n"), 0o644))

	out, _, err := runCLI(t, "validate", path)
	require.ErrorIs(t, err, fighter.ErrInvalidRegistration)
	assert.Contains(t, out, "Stats validation failed")
	assert.Contains(t, out, "striking: maximum is 95")
	assert.Contains(t, out, "chin: minimum is 20")
}

func TestFight_Usage(t *testing.T) {
	_, stderr, err := runCLI(t, "fight", "only-one.yaml")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "usage: fightbook fight")
}

func TestHashToken(t *testing.T) {
	out, _, err := runCLI(t, "hash-token", "s3cret")
	require.NoError(t, err)
	assert.True(t, arena.CheckToken("s3cret", strings.TrimSpace(out)))

	_, _, err = runCLI(t, "hash-token")
	assert.ErrorIs(t, err, errUsage)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "iron-mike", slug("Iron Mike"))
	assert.Equal(t, "el-cucuy-2", slug("  El Cucuy #2 "))
}
