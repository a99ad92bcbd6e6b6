package carve

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPPM(t *testing.T, path string, width, height int, seed int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, SavePPM(path, newTestGrid(t, width, height, randomPixels(seed))))
}

func TestExec_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.ppm")
	dst := filepath.Join(dir, "result.png")
	writeTestPPM(t, src, 16, 12, 1)

	var stderr bytes.Buffer
	p := &Processor{NewWidth: 10, NewHeight: 9, Workers: 2}
	err := p.Execute(context.Background(), &Ops{Src: src, Dst: dst, PipeName: "-", Stderr: &stderr})
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 9, cfg.Height)
	assert.Contains(t, stderr.String(), "result.png")
	assert.Contains(t, stderr.String(), "Execution time")
}

func TestExec_SingleFileFailureRemovesDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.ppm")
	dst := filepath.Join(dir, "result.ppm")
	writeTestPPM(t, src, 6, 6, 2)

	p := &Processor{NewWidth: 8}
	err := p.Execute(context.Background(), &Ops{Src: src, Dst: dst, PipeName: "-", Stderr: &bytes.Buffer{}})
	assert.ErrorIs(t, err, ErrBounds)
	assert.NoFileExists(t, dst)
}

func TestExec_InvalidPaths(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.ppm")
	writeTestPPM(t, src, 4, 4, 3)
	p := &Processor{NewWidth: 2}

	err := p.Execute(context.Background(), &Ops{Src: src, Dst: filepath.Join(dir, "out.tiff"), Stderr: &bytes.Buffer{}})
	assert.ErrorIs(t, err, ErrFormat)

	err = p.Execute(context.Background(), &Ops{Src: filepath.Join(dir, "missing.ppm"), Dst: filepath.Join(dir, "out.ppm"), Stderr: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestExec_Directory(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "resized")
	writeTestPPM(t, filepath.Join(in, "a.ppm"), 10, 8, 4)
	writeTestPPM(t, filepath.Join(in, "nested", "b.ppm"), 12, 6, 5)
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("skip me"), 0644))

	p := &Processor{NewWidth: 50, Percentage: true}
	err := p.Execute(context.Background(), &Ops{Src: in, Dst: out, Workers: 2, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	a, err := LoadPPM(filepath.Join(out, "a.ppm"))
	require.NoError(t, err)
	assert.Equal(t, 5, a.Width())
	assert.Equal(t, 8, a.Height())

	b, err := LoadPPM(filepath.Join(out, "b.ppm"))
	require.NoError(t, err)
	assert.Equal(t, 6, b.Width())
	assert.Equal(t, 6, b.Height())

	assert.NoFileExists(t, filepath.Join(out, "notes.txt"))
}

func TestExec_DirectoryReportsFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeTestPPM(t, filepath.Join(in, "good.ppm"), 8, 8, 6)
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.ppm"), []byte("P3 2 2 255 0"), 0644))

	p := &Processor{NewHeight: 4}
	err := p.Execute(context.Background(), &Ops{Src: in, Dst: out, Stderr: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 image(s) could not be resized")

	assert.FileExists(t, filepath.Join(out, "good.ppm"))
	assert.NoFileExists(t, filepath.Join(out, "broken.ppm"))
}

func TestExec_URLSource(t *testing.T) {
	var body bytes.Buffer
	require.NoError(t, EncodePPM(&body, newTestGrid(t, 9, 9, randomPixels(7))))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body.Bytes())
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "remote.ppm")
	p := &Processor{NewWidth: 6}
	err := p.Execute(context.Background(), &Ops{Src: srv.URL + "/image.ppm", Dst: dst, PipeName: "-", Stderr: &bytes.Buffer{}})
	require.NoError(t, err)

	g, err := LoadPPM(dst)
	require.NoError(t, err)
	assert.Equal(t, 6, g.Width())
	assert.Equal(t, 9, g.Height())
}

func TestExec_DestName(t *testing.T) {
	assert.Equal(t, "photo.jpg", destName("/tmp/in/photo.jpg"))
	assert.Equal(t, "image.PPM", destName("image.PPM"))
	assert.Equal(t, "anim.png", destName("dir/anim.gif"))

	assert.True(t, isValidExtension(".JPEG", destExtensions))
	assert.False(t, isValidExtension(".gif", destExtensions))
	assert.True(t, isValidExtension(".gif", sourceExtensions))
	assert.False(t, isValidExtension("", sourceExtensions))
}
