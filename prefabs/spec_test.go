package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScene(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, s *Scene)
	}{
		{
			name: "defaults_mode",
			yaml: "scripts:\n  - path: a.tengo\n",
			check: func(t *testing.T, s *Scene) {
				require.Len(t, s.Scripts, 1)
				assert.Equal(t, ScriptOnce, s.Scripts[0].Mode)
			},
		},
		{
			name: "entities",
			yaml: "entities:\n  - name: a\n    dynamic:\n      Health: 3\n    native:\n      Position: {x: 1}\n",
			check: func(t *testing.T, s *Scene) {
				require.Len(t, s.Entities, 1)
				assert.Equal(t, 3, s.Entities[0].Dynamic["Health"])
				assert.Equal(t, map[string]any{"x": 1}, s.Entities[0].Native["Position"])
			},
		},
		{name: "negative_ticks", yaml: "ticks: -1\n", wantErr: true},
		{name: "bad_mode", yaml: "scripts:\n  - path: a.tengo\n    mode: always\n", wantErr: true},
		{name: "empty_path", yaml: "scripts:\n  - mode: once\n", wantErr: true},
		{name: "duplicate_names", yaml: "entities:\n  - name: a\n  - name: a\n", wantErr: true},
		{name: "not_yaml", yaml: "ticks: [", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ParseScene([]byte(tc.yaml))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, s)
		})
	}
}

func TestLoadEmbeddedDemo(t *testing.T) {
	s, err := LoadScene("demo.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, s.Ticks)
	require.Len(t, s.Scripts, 2)
	assert.Equal(t, ScriptTick, s.Scripts[1].Mode)

	for _, sc := range s.Scripts {
		src, err := LoadScript(sc.Path)
		require.NoError(t, err, sc.Path)
		assert.NotEmpty(t, src)
	}

	_, err = LoadScene("missing.yaml")
	assert.Error(t, err)
}

func TestCleanPaths(t *testing.T) {
	assert.Equal(t, "scripts/a.tengo", cleanScriptPath("prefabs/scripts/a.tengo"))
	assert.Equal(t, "scripts/a.tengo", cleanScriptPath("scripts/a.tengo"))
	assert.Equal(t, "scripts/a.tengo", cleanScriptPath("a.tengo"))
	assert.Equal(t, "demo.yaml", cleanPrefabPath("prefabs/demo.yaml"))
	assert.Equal(t, "", cleanPrefabPath(""))
}

func TestDiskOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	old := Dir
	Dir = dir
	t.Cleanup(func() { Dir = old })

	_, ok := ModTime("demo.yaml")
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.yaml"), []byte("ticks: 9\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "setup.tengo"), []byte("x := 1"), 0o644))

	s, err := LoadScene("demo.yaml")
	require.NoError(t, err)
	assert.Equal(t, 9, s.Ticks)
	src, err := LoadScript("scripts/setup.tengo")
	require.NoError(t, err)
	assert.Equal(t, "x := 1", string(src))

	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "scripts", "setup.tengo"), stamp, stamp))
	mod, ok := ModTime("scripts/setup.tengo")
	require.True(t, ok)
	assert.True(t, mod.Equal(stamp))

	_, ok = ModTime("demo.yaml")
	assert.True(t, ok)
	_, ok = ModTime("scripts/regen.tengo")
	assert.False(t, ok)
}
