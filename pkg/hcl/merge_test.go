package hcl

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

func TestParseHCLDirectory(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "b.hcl"), `
lesson "second" {
  window = [0, 100]
  pupil  = [10, 20]
  tutor  = [0, 100]
}
`)
	writeFile(t, filepath.Join(dir, "a.hcl"), `
lesson "first" {
  window = [0, 100]
  pupil  = [0, 100]
  tutor  = [50, 60]
}
`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a lesson")

	requests, err := ParseHCLDirectory(dir)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "first", requests[0].LessonID)
	assert.Equal(t, "second", requests[1].LessonID)
}

func TestParseHCLDirectory_Empty(t *testing.T) {
	_, err := ParseHCLDirectory(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no HCL files")
}

func TestParseHCLPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lesson.hcl")
	writeFile(t, path, `
lesson "only" {
  window = [0, 100]
  pupil  = [0, 100]
  tutor  = [0, 100]
  answer = 100
}
`)

	requests, err := ParseHCLPath(path)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "only", requests[0].LessonID)

	txt := filepath.Join(dir, "lesson.txt")
	writeFile(t, txt, "")
	_, err = ParseHCLPath(txt)
	assert.Error(t, err)

	_, err = ParseHCLPath(filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)
}

// The shipped example lessons must evaluate to their recorded answers
func TestExampleLessons(t *testing.T) {
	requests, err := ParseHCLDirectory(filepath.Join("..", "..", "examples"))
	require.NoError(t, err)
	require.Len(t, requests, 3)

	for _, request := range requests {
		t.Run(request.LessonID, func(t *testing.T) {
			result, err := temporal.Evaluate(request, time.Now())
			require.NoError(t, err)
			require.NotNil(t, result.Matched)
			assert.True(t, *result.Matched, "got %d, want %d", result.Seconds, *request.Answer)
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
