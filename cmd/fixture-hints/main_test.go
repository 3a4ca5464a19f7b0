package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-factory/internal/sidecar"
)

const storeHints = "../../store/testdata/hints.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "-p", "fixture-factory/store", storeHints)
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 errors, 0 warnings")
}

func TestCheckReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "2"
shapes:
  - type: store.Custmer
  - type: store.Order
    members:
      Totl: {min: 1}
  - type: store.Order
`), 0o644))

	out, err := run(t, "check", "-p", "fixture-factory/store", path)
	require.ErrorIs(t, err, errInvalidHints)

	assert.Contains(t, out, "[unknown-type]")
	assert.Contains(t, out, "store.Customer")
	assert.Contains(t, out, "[unknown-member]")
	assert.Contains(t, out, "duplicate shape")
	assert.Contains(t, out, `unsupported version "2"`)
}

func TestCheckStrict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
shapes:
  - type: store.Page
    params: [K, V]
`), 0o644))

	_, err := run(t, "check", "-p", "fixture-factory/store", path)
	require.NoError(t, err)

	_, err = run(t, "check", "--strict", "-p", "fixture-factory/store", path)
	assert.ErrorIs(t, err, errInvalidHints)
}

func TestCheckMissingFile(t *testing.T) {
	_, err := run(t, "check", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "failed to read hint file")
}

func TestFmt(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.yaml")

	_, err := run(t, "fmt", "-o", dst, storeHints)
	require.NoError(t, err)

	want, err := sidecar.LoadFile(storeHints)
	require.NoError(t, err)

	got, err := sidecar.LoadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
