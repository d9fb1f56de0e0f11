package kernel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfluke/gen4ids/search"
)

func TestDefaultIsValid(t *testing.T) {
	src := Default()
	require.NoError(t, src.Validate())
	assert.Equal(t, "match_none.wgsl", src.Name)
}

func TestLoadEmptyPath(t *testing.T) {
	src, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), src)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seeds.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(Default().Code), 0o644))

	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "seeds.wgsl", src.Name)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.wgsl"))
	assert.ErrorIs(t, err, search.ErrKernel)
}

func TestValidateRejects(t *testing.T) {
	base := Default().Code
	tests := map[string]string{
		"wrong workgroup": strings.Replace(base, "@workgroup_size(4, 4, 16)", "@workgroup_size(64, 1, 1)", 1),
		"no entry point":  strings.Replace(base, "fn main(", "fn search(", 1),
		"not compute":     strings.Replace(base, "@compute", "@vertex", 1),
		"named constant":  strings.Replace(base, "@workgroup_size(4, 4, 16)", "@workgroup_size(WG, 4, 16)", 1),
		"short size":      strings.Replace(base, "@workgroup_size(4, 4, 16)", "@workgroup_size(4, 4)", 1),
		"no input":        strings.Replace(base, "@binding(0)", "@binding(2)", 1),
		"no output":       strings.Replace(base, "@binding(1)", "@binding(3)", 1),
	}
	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			err := Source{Name: name, Code: code}.Validate()
			assert.ErrorIs(t, err, search.ErrKernel)
		})
	}
}

func TestValidateAcceptsEquivalentEntryPoints(t *testing.T) {
	base := Default().Code
	tests := map[string]string{
		"reversed attributes": strings.Replace(base, "@compute @workgroup_size(4, 4, 16)", "@workgroup_size(4, 4, 16) @compute", 1),
		"unsigned suffix":     strings.Replace(base, "@workgroup_size(4, 4, 16)", "@workgroup_size(4u, 4u, 16u)", 1),
		"signed suffix":       strings.Replace(base, "@workgroup_size(4, 4, 16)", "@workgroup_size(4i, 4i, 16i)", 1),
		"hex and comma":       strings.Replace(base, "@workgroup_size(4, 4, 16)", "@workgroup_size(0x4, 4, 0x10u,)", 1),
		"split lines":         strings.Replace(base, "@compute @workgroup_size(4, 4, 16)", "@compute\n@workgroup_size(4,4,16)\n", 1),
	}
	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			require.NotEqual(t, base, code)
			assert.NoError(t, Source{Name: name, Code: code}.Validate())
		})
	}
}

func TestWorkgroupSize(t *testing.T) {
	got, err := workgroupSize("64")
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{64, 1, 1}, got)

	got, err = workgroupSize(" 4u , 4 , 16i ")
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{4, 4, 16}, got)

	_, err = workgroupSize("1, 2, 3, 4")
	assert.Error(t, err)
}
