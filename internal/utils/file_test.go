package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileExtension(t *testing.T) {
	assert.Equal(t, "mp4", GetFileExtension("/videos/Clip.MP4"))
	assert.Equal(t, "gz", GetFileExtension("archive.tar.gz"))
	assert.Equal(t, "", GetFileExtension("README"))
}

func TestHasExtension(t *testing.T) {
	exts := []string{"mp4", ".mov"}
	assert.True(t, HasExtension("clip.MP4", exts))
	assert.True(t, HasExtension("/videos/clip.mov", exts))
	assert.False(t, HasExtension("clip.mkv", exts))
	assert.False(t, HasExtension("clip", exts))
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t,
		filepath.Join("out", "clip_portrait.png"),
		GenerateOutputFilename("/videos/clip.mp4", "out", "", "_portrait", "png"))
	assert.Equal(t,
		filepath.Join("out", "pre_a_b.mp4"),
		GenerateOutputFilename("a:b.mp4", "out", "pre_", "", ""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeFilename(" a/b?c. "))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "500.0 MB", FormatFileSize(500*1024*1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:12", FormatDuration(12.4))
	assert.Equal(t, "1:05", FormatDuration(64.6))
	assert.Equal(t, "0:00", FormatDuration(-3))
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	assert.False(t, FileExists(dir))

	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
