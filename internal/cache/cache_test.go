package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tyjson/internal/diag"
)

func TestPutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	key := DigestOf("0.1.0", []byte("version = 1"))
	in := &Payload{
		Unit: "app",
		Doc:  []byte(`{"fns":[]}`),
		Diags: []diag.Diagnostic{
			diag.New(diag.SevWarning, diag.LowerConstEval, "app::X", "overflow").WithNote("app::main", "used here"),
		},
	}
	require.NoError(t, c.Put(key, in))

	out, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "app", out.Unit)
	assert.Equal(t, in.Doc, out.Doc)
	assert.Equal(t, in.Diags, out.Diags)
	assert.NotZero(t, out.Stored)
	assert.Equal(t, schemaVersion, out.Schema)
}

func TestMiss(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	_, ok, err := c.Get(DigestOf("0.1.0", []byte("nothing")))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDigestDependsOnVersion(t *testing.T) {
	src := []byte("version = 1")
	assert.Equal(t, DigestOf("1", src), DigestOf("1", src))
	assert.NotEqual(t, DigestOf("1", src), DigestOf("2", src))
	assert.NotEqual(t, DigestOf("1", src), DigestOf("1", []byte("version = 2")))
}

func TestCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)
	key := DigestOf("0.1.0", []byte("x"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", key.String()+".mp"), []byte{0xc1}, 0o644))

	_, ok, err := c.Get(key)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDropAll(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key := DigestOf("0.1.0", []byte("x"))
	require.NoError(t, c.Put(key, &Payload{Unit: "x"}))
	require.NoError(t, c.DropAll())

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, &Payload{Unit: "x"}))
	_, ok, err = c.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConcurrentWriters(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := DigestOf("0.1.0", []byte{byte(i)})
			assert.NoError(t, c.Put(key, &Payload{Unit: "u", Doc: []byte{byte(i)}}))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		out, ok, err := c.Get(DigestOf("0.1.0", []byte{byte(i)}))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte{byte(i)}, out.Doc)
	}
}
