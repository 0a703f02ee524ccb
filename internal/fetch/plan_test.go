package fetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan_ClassifiesLocalState(t *testing.T) {
	tests := []struct {
		name       string
		localSize  int64 // -1 means no local file
		remoteSize int64
		wantState  LocalState
		wantOffset int64
	}{
		{
			name:       "missing file is absent",
			localSize:  -1,
			remoteSize: 500,
			wantState:  StateAbsent,
			wantOffset: 0,
		},
		{
			name:       "empty file is absent",
			localSize:  0,
			remoteSize: 500,
			wantState:  StateAbsent,
			wantOffset: 0,
		},
		{
			name:       "smaller file is partial and resumes from its size",
			localSize:  200,
			remoteSize: 500,
			wantState:  StatePartial,
			wantOffset: 200,
		},
		{
			name:       "matching size is complete",
			localSize:  500,
			remoteSize: 500,
			wantState:  StateComplete,
			wantOffset: 500,
		},
		{
			name:       "oversized file is treated as absent, never resumed",
			localSize:  700,
			remoteSize: 500,
			wantState:  StateAbsent,
			wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			if tt.localSize >= 0 {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "my-game"), 0755))
				require.NoError(t, os.WriteFile(
					filepath.Join(dir, "my-game", "game.zip"),
					make([]byte, tt.localSize),
					0644,
				))
			}

			manifest := Manifest{{Name: "my-game/game.zip", Size: tt.remoteSize, URL: "http://example.test/game.zip"}}

			plan, err := BuildPlan(manifest, dir)
			require.NoError(t, err)
			require.Len(t, plan, 1)

			assert.Equal(t, tt.wantState, plan[0].State)
			assert.Equal(t, tt.wantOffset, plan[0].ResumeOffset)
			assert.LessOrEqual(t, plan[0].ResumeOffset, plan[0].File.Size)
		})
	}
}

func TestBuildPlan_PreservesManifestOrder(t *testing.T) {
	manifest := Manifest{
		{Name: "b-entry/b.zip", Size: 10, URL: "http://example.test/b.zip"},
		{Name: "a-entry/a.zip", Size: 20, URL: "http://example.test/a.zip"},
	}

	plan, err := BuildPlan(manifest, t.TempDir())
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "b-entry/b.zip", plan[0].File.Name)
	assert.Equal(t, "a-entry/a.zip", plan[1].File.Name)
}
