package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		ResetEnvCache()
	})
	ResetEnvCache()
	return dir
}

func TestGetEnv_ProcessEnvironment(t *testing.T) {
	t.Setenv("QF_TEST_STRING", "hello")

	assert.Equal(t, "hello", GetEnv("QF_TEST_STRING"))
	assert.Equal(t, "hello", GetEnv("qf_test_string"))
}

func TestGetEnv_Missing(t *testing.T) {
	chdirTemp(t)
	v, ok := LookupEnv("QF_TEST_DOES_NOT_EXIST")
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.Empty(t, GetEnv("QF_TEST_DOES_NOT_EXIST"))
}

func TestLookupEnv_DotEnvFallback(t *testing.T) {
	dir := chdirTemp(t)
	content := "# comment\nQF_DOTENV_KEY = from-file\nbroken line\nqf_lower=\"quoted\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644))

	v, ok := LookupEnv("QF_DOTENV_KEY")
	assert.True(t, ok)
	assert.Equal(t, "from-file", v)
	assert.Equal(t, "quoted", GetEnv("QF_LOWER"))
}

func TestEnviron_ProcessWinsOverDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("QF_ONLY_FILE=file\nQF_BOTH=file\n"), 0644))
	t.Setenv("QF_BOTH", "process")

	vals := Environ()
	assert.Equal(t, "file", vals["QF_ONLY_FILE"])
	assert.Equal(t, "process", vals["QF_BOTH"])
}

func TestLoadEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("QF_LOADED_KEY=loaded\nQF_KEEP_KEY=file\n"), 0644))
	t.Setenv("QF_KEEP_KEY", "process")
	t.Cleanup(func() { _ = os.Unsetenv("QF_LOADED_KEY") })

	require.NoError(t, LoadEnv("test"))
	assert.Equal(t, "loaded", os.Getenv("QF_LOADED_KEY"))
	assert.Equal(t, "process", os.Getenv("QF_KEEP_KEY"))
}

func TestLoadEnv_MissingFile(t *testing.T) {
	chdirTemp(t)
	assert.Error(t, LoadEnv("nope"))
}
