package gpu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfluke/gen4ids/kernel"
	"github.com/openfluke/gen4ids/search"
)

// fixedKernel writes 7, 42, 1000 from the first invocation only.
const fixedKernel = `
@group(0) @binding(0) var<storage, read> input : array<u32>;
@group(0) @binding(1) var<storage, read_write> output : array<u32, 10>;

@compute @workgroup_size(4, 4, 16)
fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
    _ = input[0];
    if (gid.x != 0u || gid.y != 0u || gid.z != 0u) {
        return;
    }
    output[0] = 3u;
    output[1] = 7u;
    output[2] = 42u;
    output[3] = 1000u;
}
`

// echoKernel reports the packed key as its only match.
const echoKernel = `
@group(0) @binding(0) var<storage, read> input : array<u32>;
@group(0) @binding(1) var<storage, read_write> output : array<u32, 10>;

@compute @workgroup_size(4, 4, 16)
fn main(@builtin(global_invocation_id) gid : vec3<u32>) {
    let candidate = gid.x | (gid.y << 10u) | (gid.z << 20u);
    if (candidate != input[0]) {
        return;
    }
    output[0] = 1u;
    output[1] = candidate;
}
`

func runOnDevice(t *testing.T, code string, a, b uint16) string {
	t.Helper()
	backend, err := NewBackend(search.Options{Kernel: code, KernelName: t.Name()})
	require.NoError(t, err)
	s := search.NewSearcher(backend, search.WithLogger(search.NoopLogger()))

	got, err := s.Search(context.Background(), a, b)
	if errors.Is(err, search.ErrNoAccelerator) || errors.Is(err, search.ErrDeviceCreation) {
		t.Skipf("no usable GPU adapter (expected on CI): %v", err)
	}
	require.NoError(t, err)
	return got
}

func TestNewBackendRequiresKernel(t *testing.T) {
	_, err := NewBackend(search.Options{})
	assert.ErrorIs(t, err, search.ErrKernel)
}

func TestNewBackendDefaults(t *testing.T) {
	b, err := NewBackend(search.Options{Kernel: kernel.Default().Code})
	require.NoError(t, err)
	assert.Equal(t, "wgpu", b.Name())
	assert.Zero(t, b.mapTimeout, "no map time limit unless configured")

	b, err = NewBackend(search.Options{Kernel: kernel.Default().Code, MapTimeout: 250 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, b.mapTimeout)
}

func TestAcquireCanceled(t *testing.T) {
	b, err := NewBackend(search.Options{Kernel: kernel.Default().Code})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Acquire(ctx)
	assert.ErrorIs(t, err, search.ErrNoAccelerator)
}

func TestDeviceMatchNone(t *testing.T) {
	assert.Equal(t, "", runOnDevice(t, kernel.Default().Code, 0, 0))
}

func TestDeviceFixedResult(t *testing.T) {
	assert.Equal(t, "7,42,1000", runOnDevice(t, fixedKernel, 0, 0))
}

func TestDeviceSeesPackedKey(t *testing.T) {
	assert.Equal(t, "2882343476", runOnDevice(t, echoKernel, 0x1234, 0xabcd))
}
