package classifier

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wallgrab/pkg/config"
	"wallgrab/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
}

func writeGIF(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gif.Encode(f, image.NewPaletted(image.Rect(0, 0, w, h), []color.Color{color.Black}), nil))
}

func newClassifier(log logger.Logger) *Classifier {
	cfg := config.DefaultConfig().Classify
	return New(&cfg, log)
}

func TestBucketForPartition(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		w, h int
		want Bucket
	}{
		{9, 16, Mobile},
		{69, 100, Mobile},
		{7, 10, Mobile},
		{71, 100, Square},
		{800, 1000, Square},
		{1000, 1000, Square},
		{13, 10, Square},
		{131, 100, Landscape},
		{1600, 900, Landscape},
		{21, 9, Landscape},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, th.BucketFor(tt.w, tt.h), "%dx%d", tt.w, tt.h)
	}
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{MobileMax: 1.3, SquareMax: 0.7}.Validate())
	assert.Error(t, Thresholds{MobileMax: 0, SquareMax: 1}.Validate())
}

func TestClassifyExamples(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "1.png"), 800, 1000)
	writePNG(t, filepath.Join(root, "2.png"), 1000, 1000)
	writePNG(t, filepath.Join(root, "3.png"), 1600, 900)

	result, err := newClassifier(logger.NewNopLogger()).Classify(root)
	require.NoError(t, err)

	assert.Empty(t, result.Buckets[Mobile])
	assert.Equal(t, []string{filepath.Join(root, "1.png"), filepath.Join(root, "2.png")}, result.Buckets[Square])
	assert.Equal(t, []string{filepath.Join(root, "3.png")}, result.Buckets[Landscape])

	manifestDir := t.TempDir()
	_, err = WriteManifests(manifestDir, result)
	require.NoError(t, err)

	mobile, err := os.ReadFile(filepath.Join(manifestDir, "mobile.txt"))
	require.NoError(t, err)
	assert.Empty(t, mobile)

	square, err := os.ReadFile(filepath.Join(manifestDir, "square.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "1.png")+"\n"+filepath.Join(root, "2.png"), string(square))
}

func TestClassifySkipsExcludedAndUndecodable(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "nested", "deep", "tall.png"), 9, 16)
	writeGIF(t, filepath.Join(root, "anim.gif"), 10, 10)
	writeGIF(t, filepath.Join(root, "LOUD.GIF"), 20, 10)
	require.NoError(t, os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("not really"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.png"), []byte("truncated"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0644))

	log := logger.NewTestLogger()
	result, err := newClassifier(log).Classify(root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "nested", "deep", "tall.png")}, result.Buckets[Mobile])
	assert.Empty(t, result.Buckets[Square])
	assert.Equal(t, []string{filepath.Join(root, "LOUD.GIF")}, result.Buckets[Landscape], "exclusion is case-sensitive")
	assert.ElementsMatch(t, []string{filepath.Join(root, "anim.gif"), filepath.Join(root, "clip.mp4")}, result.Skipped)
	assert.ElementsMatch(t, []string{filepath.Join(root, "broken.png"), filepath.Join(root, "notes.txt")}, result.Unreadable)

	for _, b := range Buckets {
		for _, p := range result.Buckets[b] {
			assert.NotEqual(t, ".gif", filepath.Ext(p))
			assert.NotEqual(t, ".mp4", filepath.Ext(p))
		}
	}
	assert.True(t, log.HasMessage("Ignoring video/gif"))
	assert.True(t, log.HasMessage("Couldn't load file"))
}

func TestClassifyIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "b", "wide.png"), 30, 10)
	writePNG(t, filepath.Join(root, "a", "tall.png"), 10, 30)
	writePNG(t, filepath.Join(root, "c.png"), 10, 10)

	c := newClassifier(logger.NewNopLogger())
	manifestDir := t.TempDir()

	read := func() map[Bucket]string {
		result, err := c.Classify(root)
		require.NoError(t, err)
		_, err = WriteManifests(manifestDir, result)
		require.NoError(t, err)

		out := map[Bucket]string{}
		for _, b := range Buckets {
			data, err := os.ReadFile(filepath.Join(manifestDir, string(b)+".txt"))
			require.NoError(t, err)
			out[b] = string(data)
		}
		return out
	}

	first := read()
	second := read()
	assert.Equal(t, first, second)
}

func TestClassifyMissingRoot(t *testing.T) {
	_, err := newClassifier(logger.NewNopLogger()).Classify(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestClassifyCustomThresholds(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "x.png"), 8, 10)

	cfg := config.ClassifyConfig{MobileMax: 0.8, SquareMax: 1.2}
	result, err := New(&cfg, logger.NewNopLogger()).Classify(root)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count(Mobile))

	bad := config.ClassifyConfig{MobileMax: 2, SquareMax: 1}
	_, err = New(&bad, logger.NewNopLogger()).Classify(root)
	assert.Error(t, err)
}

func TestMaterialize(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "one", "wall.png"), 30, 10)
	writePNG(t, filepath.Join(root, "two", "wall.png"), 40, 10)
	writePNG(t, filepath.Join(root, "phone.png"), 10, 30)

	result, err := newClassifier(logger.NewNopLogger()).Classify(root)
	require.NoError(t, err)

	linkRoot := t.TempDir()
	linker := NewLinker(linkRoot)
	linker.now = func() time.Time { return time.Unix(1700000000, 0) }

	created, err := linker.Materialize(result)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	entries, err := os.ReadDir(filepath.Join(linkRoot, "landscape"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"wall.png", "wall_1700000000000000000.png"}, names)

	square, err := os.ReadDir(filepath.Join(linkRoot, "square"))
	require.NoError(t, err)
	assert.Empty(t, square, "empty buckets still get a directory")

	// Links share the inode of their source
	src, err := os.Stat(filepath.Join(root, "phone.png"))
	require.NoError(t, err)
	dst, err := os.Stat(filepath.Join(linkRoot, "mobile", "phone.png"))
	require.NoError(t, err)
	assert.True(t, os.SameFile(src, dst))

	// A second pass does not duplicate links that already point at the source
	created, err = linker.Materialize(result)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	entries, err = os.ReadDir(filepath.Join(linkRoot, "landscape"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Name(), "wall"))
	}
}

func TestMaterializeRerunWithNewLinker(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a", "x.png"), 10, 10)
	writePNG(t, filepath.Join(root, "b", "x.png"), 12, 10)

	result, err := newClassifier(logger.NewNopLogger()).Classify(root)
	require.NoError(t, err)
	require.Len(t, result.Buckets[Square], 2)

	linkRoot := t.TempDir()
	first := NewLinker(linkRoot)
	first.now = func() time.Time { return time.Unix(1700000000, 0) }
	created, err := first.Materialize(result)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// A later run picks a different suffix but must still see the old link
	second := NewLinker(linkRoot)
	second.now = func() time.Time { return time.Unix(1800000000, 0) }
	created, err = second.Materialize(result)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	entries, err := os.ReadDir(filepath.Join(linkRoot, "square"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestClassifyNotifiesInWalkOrder(t *testing.T) {
	root := t.TempDir()
	writeGIF(t, filepath.Join(root, "a.gif"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.png"), []byte("truncated"), 0644))
	writePNG(t, filepath.Join(root, "c.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(root, "d.mp4"), []byte("clip"), 0644))

	var notices []string
	c := newClassifier(logger.NewNopLogger())
	c.SetNotifier(func(msg string) { notices = append(notices, msg) })

	result, err := c.Classify(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Ignoring video/gif: " + filepath.Join(root, "a.gif"),
		"Couldn't load file " + filepath.Join(root, "b.png"),
		"Ignoring video/gif: " + filepath.Join(root, "d.mp4"),
	}, notices)
	assert.Equal(t, []string{filepath.Join(root, "c.png")}, result.Buckets[Square])
}
