package pictures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/pic-profile-maker/imaging"
	"github.com/krishkalaria12/pic-profile-maker/logger"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"github.com/krishkalaria12/pic-profile-maker/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

type fixture struct {
	maker     *Maker
	processor *testutil.FakeProcessor
	pictures  *testutil.PictureStore
	resources string
	work      string
}

func newFixture(t *testing.T, faces int) *fixture {
	t.Helper()

	work := t.TempDir()
	resources := t.TempDir()
	proc := &testutil.FakeProcessor{OutDir: work, Faces: faces}
	store := testutil.NewPictureStore()

	maker := NewMaker(proc, store, nil, Options{
		ResourcesDir: resources,
		WorkDir:      work,
		Retention:    5 * time.Second,
	}, logger.Nop())

	return &fixture{maker: maker, processor: proc, pictures: store, resources: resources, work: work}
}

func newRequest(quality models.Quality) Request {
	return Request{
		Upload:  Upload{Filename: "me.jpg", Content: strings.NewReader("jpeg bytes")},
		Colors:  imaging.ColorPair{white, black},
		Quality: quality,
	}
}

func newUser() *models.User {
	return &models.User{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", IsActive: true}
}

// workFiles lists what is left in the work directory.
func workFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestProduceUserPicture_Success(t *testing.T) {
	fx := newFixture(t, 1)
	user := newUser()

	res, err := fx.maker.ProduceUserPicture(context.Background(), user, newRequest(models.QualityMedium))
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(res.Path))
	assert.FileExists(t, res.Path)
	assert.Equal(t, fx.maker.UserDir(user.ID), filepath.Dir(res.Path))

	require.NotNil(t, res.Picture)
	assert.Equal(t, user.ID, res.Picture.UserID)
	assert.Equal(t, models.QualityMedium, res.Picture.Quality)
	assert.Equal(t, filepath.Base(res.Path), res.Picture.Filename)
	assert.Contains(t, res.Picture.Filename, "_medium_0")
	assert.Len(t, fx.pictures.All(), 1)

	faces := fx.processor.AllFaces()
	require.Len(t, faces, 1)
	assert.Equal(t, []string{"Resize", "RemoveBackground", "SetBackground", "ApplyContour", "SetBlur", "Save"}, faces[0].Calls)
	assert.Equal(t, 600, faces[0].Size)
	assert.Equal(t, 30, faces[0].Blur)
	assert.Equal(t, time.Duration(0), faces[0].Retention)

	// upload and processed file are both gone from the work dir
	assert.Empty(t, workFiles(t, fx.work))
}

func TestReserveFilename_AdvancesPastExisting(t *testing.T) {
	fx := newFixture(t, 1)
	user := newUser()

	first, err := fx.maker.ProduceUserPicture(context.Background(), user, newRequest(models.QualityPreview))
	require.NoError(t, err)

	// the fake names outputs after the upload, so force the same stem twice
	stem, ext := splitName(first.Path)
	stem = strings.TrimSuffix(stem, "_preview_0")
	for i := 1; i <= 2; i++ {
		name, err := reserveFilename(fx.maker.UserDir(user.ID), stem, models.QualityPreview, ext)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s_preview_%d%s", stem, i, ext), name)
	}
}

func TestProduceUserPicture_NoFace(t *testing.T) {
	fx := newFixture(t, 0)
	user := newUser()

	_, err := fx.maker.ProduceUserPicture(context.Background(), user, newRequest(models.QualityPreview))

	var noFace *NoFaceError
	require.ErrorAs(t, err, &noFace)
	assert.Equal(t, "No Faces detected in the picture", noFace.Message)

	assert.Empty(t, fx.pictures.All())
	entries, err := os.ReadDir(fx.maker.UserDir(user.ID))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, workFiles(t, fx.work))
}

func TestProduceUserPicture_InsertFailureCleansUp(t *testing.T) {
	fx := newFixture(t, 1)
	fx.pictures.CreateErr = errors.New("db down")
	user := newUser()

	_, err := fx.maker.ProduceUserPicture(context.Background(), user, newRequest(models.QualityPreview))
	require.Error(t, err)

	entries, err := os.ReadDir(fx.maker.UserDir(user.ID))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, workFiles(t, fx.work))
}

func TestReserveFilename_ConcurrentCallsDoNotCollide(t *testing.T) {
	fx := newFixture(t, 1)
	user := newUser()
	dir := fx.maker.UserDir(user.ID)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	const n = 8
	names := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, err := reserveFilename(dir, "me", models.QualityHigh, ".png")
			assert.NoError(t, err)
			names[i] = name
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, name := range names {
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, n)
}

func TestProduceTemporaryPicture(t *testing.T) {
	fx := newFixture(t, 2)
	req := newRequest(models.QualityThumbnail)
	req.Border = black
	req.FaceIndex = 1

	path, err := fx.maker.ProduceTemporaryPicture(context.Background(), req, true)
	require.NoError(t, err)
	assert.FileExists(t, path)

	faces := fx.processor.AllFaces()
	require.Len(t, faces, 2)
	assert.Empty(t, faces[0].Calls)

	selected := faces[1]
	assert.Equal(t, []string{"Resize", "RemoveBackground", "SetBackground", "ApplyContour", "SetBorder", "SetBlur", "Save"}, selected.Calls)
	assert.Equal(t, 150, selected.Size)
	assert.Equal(t, imaging.ColorPair{white, black}, selected.Colors)
	assert.Equal(t, black, selected.Border)
	assert.Equal(t, 5*time.Second, selected.Retention)
	assert.Equal(t, selected.Path(), path)

	assert.Empty(t, fx.pictures.All())
}

func TestProduceTemporaryPicture_UploadLifecycle(t *testing.T) {
	fx := newFixture(t, 1)

	_, err := fx.maker.ProduceTemporaryPicture(context.Background(), newRequest(models.QualityPreview), true)
	require.NoError(t, err)

	inputs := fx.processor.Inputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, []bool{true}, fx.processor.InputExisted())
	assert.Equal(t, ".jpg", filepath.Ext(inputs[0]))
	assert.NoFileExists(t, inputs[0])
}

func TestProduceTemporaryPicture_UploadRemovedOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testutil.FakeProcessor)
	}{
		{name: "no face", setup: func(p *testutil.FakeProcessor) { p.Faces = 0 }},
		{name: "detect error", setup: func(p *testutil.FakeProcessor) { p.DetectErr = errors.New("boom") }},
		{name: "step error", setup: func(p *testutil.FakeProcessor) { p.FailStep = "RemoveBackground" }},
		{name: "save error", setup: func(p *testutil.FakeProcessor) { p.FailStep = "Save" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, 1)
			tt.setup(fx.processor)

			_, err := fx.maker.ProduceTemporaryPicture(context.Background(), newRequest(models.QualityPreview), true)
			require.Error(t, err)

			for _, in := range fx.processor.Inputs() {
				assert.NoFileExists(t, in)
			}
			assert.Empty(t, workFiles(t, fx.work))
		})
	}
}

func TestProduceTemporaryPicture_InvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		target error
	}{
		{name: "missing color", mutate: func(r *Request) { r.Colors[1] = nil }, target: ErrInvalidRequest},
		{name: "bad quality", mutate: func(r *Request) { r.Quality = "huge" }, target: ErrInvalidRequest},
		{name: "negative index", mutate: func(r *Request) { r.FaceIndex = -1 }, target: ErrInvalidRequest},
		{name: "index out of range", mutate: func(r *Request) { r.FaceIndex = 3 }, target: ErrFaceIndex},
		{name: "unsupported file", mutate: func(r *Request) { r.Upload.Filename = "notes.txt" }, target: ErrUnsupportedFile},
		{name: "no extension", mutate: func(r *Request) { r.Upload.Filename = "picture" }, target: ErrUnsupportedFile},
		{name: "no content", mutate: func(r *Request) { r.Upload.Content = nil }, target: ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, 1)
			req := newRequest(models.QualityPreview)
			tt.mutate(&req)

			_, err := fx.maker.ProduceTemporaryPicture(context.Background(), req, true)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Empty(t, workFiles(t, fx.work))
		})
	}
}

func TestProduceTemporaryPicture_CancelledContext(t *testing.T) {
	fx := newFixture(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fx.maker.ProduceTemporaryPicture(ctx, newRequest(models.QualityPreview), true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, workFiles(t, fx.work))
}

func TestRemoveBackgroundOnly(t *testing.T) {
	fx := newFixture(t, 0)

	path, err := fx.maker.RemoveBackgroundOnly(context.Background(),
		Upload{Filename: "group.PNG", Content: strings.NewReader("png")}, models.QualityHigh, true)
	require.NoError(t, err)
	assert.FileExists(t, path)

	faces := fx.processor.AllFaces()
	require.Len(t, faces, 1)
	assert.Equal(t, []string{"Resize", "RemoveBackground", "Save"}, faces[0].Calls)
	assert.Equal(t, 1000, faces[0].Size)
	assert.Equal(t, 5*time.Second, faces[0].Retention)

	assert.Empty(t, fx.pictures.All())
	for _, in := range fx.processor.Inputs() {
		assert.NoFileExists(t, in)
	}
}

func TestRemoveBackgroundOnly_BadQuality(t *testing.T) {
	fx := newFixture(t, 1)

	_, err := fx.maker.RemoveBackgroundOnly(context.Background(),
		Upload{Filename: "a.png", Content: strings.NewReader("png")}, "huge", true)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, fx.processor.Inputs())
}

func TestListAndOpenUserPictures(t *testing.T) {
	fx := newFixture(t, 1)
	user := newUser()
	other := newUser()

	first, err := fx.maker.ProduceUserPicture(context.Background(), user, newRequest(models.QualityPreview))
	require.NoError(t, err)
	second, err := fx.maker.ProduceUserPicture(context.Background(), user, newRequest(models.QualityHigh))
	require.NoError(t, err)

	list, err := fx.maker.ListUserPictures(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Picture.Filename, list[0].Filename)
	assert.Equal(t, first.Picture.Filename, list[1].Filename)

	path, err := fx.maker.OpenUserPicture(context.Background(), user, first.Picture.Filename)
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "processed", string(content))

	_, err = fx.maker.OpenUserPicture(context.Background(), other, first.Picture.Filename)
	assert.ErrorIs(t, err, ErrPictureNotFound)

	_, err = fx.maker.OpenUserPicture(context.Background(), user, "../"+first.Picture.Filename)
	assert.ErrorIs(t, err, ErrPictureNotFound)

	otherList, err := fx.maker.ListUserPictures(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, otherList)
}

type fakeMirror struct {
	mu   sync.Mutex
	keys []string
	body []byte
	err  error
}

func (m *fakeMirror) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.keys = append(m.keys, key+"|"+contentType)
	m.body = buf.Bytes()
	return "mem://" + key, nil
}

func TestProduceUserPicture_Mirror(t *testing.T) {
	fx := newFixture(t, 1)
	mirror := &fakeMirror{}
	fx.maker.mirror = mirror
	user := newUser()

	res, err := fx.maker.ProduceUserPicture(context.Background(), user, newRequest(models.QualityPreview))
	require.NoError(t, err)

	require.Len(t, mirror.keys, 1)
	assert.Equal(t, user.ID.String()+"/"+res.Picture.Filename+"|image/png", mirror.keys[0])
	assert.Equal(t, "processed", string(mirror.body))
}

func TestProduceUserPicture_MirrorFailureIsNotFatal(t *testing.T) {
	fx := newFixture(t, 1)
	fx.maker.mirror = &fakeMirror{err: errors.New("bucket unavailable")}

	res, err := fx.maker.ProduceUserPicture(context.Background(), newUser(), newRequest(models.QualityPreview))
	require.NoError(t, err)
	assert.FileExists(t, res.Path)
	assert.Len(t, fx.pictures.All(), 1)
}
