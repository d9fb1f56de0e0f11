// Package kernel loads the WGSL search kernel handed to the wgpu backend.
package kernel

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/openfluke/gen4ids/search"
)

//go:embed match_none.wgsl
var matchNone string

// Source is a named WGSL program.
type Source struct {
	Name string
	Code string
}

// Default returns the embedded reference kernel.
func Default() Source {
	return Source{Name: "match_none.wgsl", Code: matchNone}
}

// Load reads a kernel from path. An empty path yields Default.
func Load(path string) (Source, error) {
	if path == "" {
		return Default(), nil
	}
	code, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", search.ErrKernel, err)
	}
	src := Source{Name: filepath.Base(path), Code: string(code)}
	if err := src.Validate(); err != nil {
		return Source{}, err
	}
	return src, nil
}

var (
	// The attribute block in front of the entry point, in any order.
	entryRe    = regexp.MustCompile(`((?:@\w+\s*(?:\([^)]*\))?\s*)+)fn\s+main\s*\(`)
	computeRe  = regexp.MustCompile(`@compute\b`)
	sizeRe     = regexp.MustCompile(`@workgroup_size\s*\(([^)]*)\)`)
	binding0Re = regexp.MustCompile(`@group\(0\)\s*@binding\(0\)`)
	binding1Re = regexp.MustCompile(`@group\(0\)\s*@binding\(1\)`)
)

// Validate checks the parts of the kernel contract visible in source: a
// compute entry point named main with the fixed workgroup size, and both
// bindings in group 0. It does not compile the shader.
func (s Source) Validate() error {
	m := entryRe.FindStringSubmatch(s.Code)
	if m == nil || !computeRe.MatchString(m[1]) {
		return fmt.Errorf("%w: %s: no @compute fn main", search.ErrKernel, s.Name)
	}
	sm := sizeRe.FindStringSubmatch(m[1])
	if sm == nil {
		return fmt.Errorf("%w: %s: fn main has no @workgroup_size", search.ErrKernel, s.Name)
	}
	got, err := workgroupSize(sm[1])
	if err != nil {
		return fmt.Errorf("%w: %s: %v", search.ErrKernel, s.Name, err)
	}
	want := [3]uint32{search.WorkgroupX, search.WorkgroupY, search.WorkgroupZ}
	if got != want {
		return fmt.Errorf("%w: %s: workgroup size %v, dispatch grid needs %v", search.ErrKernel, s.Name, got, want)
	}
	if !binding0Re.MatchString(s.Code) {
		return fmt.Errorf("%w: %s: missing input at @group(0) @binding(0)", search.ErrKernel, s.Name)
	}
	if !binding1Re.MatchString(s.Code) {
		return fmt.Errorf("%w: %s: missing output at @group(0) @binding(1)", search.ErrKernel, s.Name)
	}
	return nil
}

// workgroupSize parses the arguments of @workgroup_size. Omitted y and z
// are 1; literals may carry a u or i suffix and may be hex.
func workgroupSize(args string) ([3]uint32, error) {
	size := [3]uint32{1, 1, 1}
	parts := strings.Split(args, ",")
	if n := len(parts); n > 1 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	if len(parts) == 0 || len(parts) > 3 {
		return size, fmt.Errorf("@workgroup_size(%s): want 1 to 3 arguments", args)
	}
	for i, p := range parts {
		lit := strings.TrimRight(strings.TrimSpace(p), "ui")
		v, err := strconv.ParseUint(lit, 0, 32)
		if err != nil {
			return size, fmt.Errorf("@workgroup_size(%s): %q is not an integer literal", args, strings.TrimSpace(p))
		}
		size[i] = uint32(v)
	}
	return size, nil
}
