// Package pictures turns uploads into profile pictures: it owns the temp-file
// lifecycle around the image processor, the per-user picture directories and
// the picture metadata rows.
package pictures

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/pic-profile-maker/imaging"
	"github.com/krishkalaria12/pic-profile-maker/logger"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"github.com/krishkalaria12/pic-profile-maker/repository"
)

const defaultBlur = 30

// PictureStore persists picture metadata.
type PictureStore interface {
	Create(ctx context.Context, picture *models.Picture) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Picture, error)
	FindByFilename(ctx context.Context, userID uuid.UUID, filename string) (*models.Picture, error)
}

// Mirror copies durable pictures to object storage.
type Mirror interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type Upload struct {
	Filename string
	Content  io.Reader
}

type Request struct {
	Upload    Upload
	Colors    imaging.ColorPair
	Border    color.Color
	Quality   models.Quality
	FaceIndex int
}

type Result struct {
	Path    string          `json:"path"`
	Picture *models.Picture `json:"picture"`
}

type Options struct {
	ResourcesDir string
	WorkDir      string
	Retention    time.Duration
	Blur         int
}

type Maker struct {
	processor imaging.Processor
	pictures  PictureStore
	mirror    Mirror
	opts      Options
	logger    *logger.Logger
}

// NewMaker wires the orchestrator. mirror may be nil.
func NewMaker(processor imaging.Processor, pictures PictureStore, mirror Mirror, opts Options, log *logger.Logger) *Maker {
	if opts.Blur == 0 {
		opts.Blur = defaultBlur
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	return &Maker{
		processor: processor,
		pictures:  pictures,
		mirror:    mirror,
		opts:      opts,
		logger:    log,
	}
}

// UserDir returns the directory holding the durable pictures of userID.
func (m *Maker) UserDir(userID uuid.UUID) string {
	return filepath.Join(m.opts.ResourcesDir, userID.String())
}

// ProduceUserPicture processes the upload, moves the result into the user's
// directory and records it.
func (m *Maker) ProduceUserPicture(ctx context.Context, user *models.User, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	dir := m.UserDir(user.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create picture directory: %w", err)
	}

	processed, err := m.ProduceTemporaryPicture(ctx, req, false)
	if err != nil {
		return nil, err
	}

	stem, ext := splitName(processed)
	filename, err := reserveFilename(dir, stem, req.Quality, ext)
	if err != nil {
		os.Remove(processed)
		return nil, err
	}
	dst := filepath.Join(dir, filename)

	if err := moveFile(processed, dst); err != nil {
		os.Remove(processed)
		os.Remove(dst)
		return nil, err
	}

	picture := &models.Picture{
		UserID:   user.ID,
		Filename: filename,
		Quality:  req.Quality,
	}
	if err := m.pictures.Create(ctx, picture); err != nil {
		os.Remove(dst)
		return nil, err
	}

	abs, err := filepath.Abs(dst)
	if err != nil {
		abs = dst
	}

	m.mirrorPicture(ctx, user.ID, filename, abs)

	m.logger.Info("Pictures: user picture created", "user_id", user.ID, "filename", filename, "quality", req.Quality)
	return &Result{Path: abs, Picture: picture}, nil
}

// ProduceTemporaryPicture runs the face pipeline on the upload and returns the
// processed file's path. When temp is set the file is removed after the
// configured retention.
func (m *Maker) ProduceTemporaryPicture(ctx context.Context, req Request, temp bool) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}
	dim, err := req.Quality.Dimension()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	ext, err := uploadExtension(req.Upload.Filename)
	if err != nil {
		return "", err
	}
	upload, err := writeUpload(m.opts.WorkDir, ext, req.Upload.Content)
	if err != nil {
		return "", err
	}
	defer os.Remove(upload)

	faces, err := m.processor.DetectFaces(ctx, upload)
	if err != nil {
		return "", fmt.Errorf("failed to detect faces: %w", err)
	}
	if len(faces) == 0 {
		return "", newNoFaceError()
	}
	if req.FaceIndex >= len(faces) {
		return "", fmt.Errorf("%w: %w: %d of %d", ErrInvalidRequest, ErrFaceIndex, req.FaceIndex, len(faces))
	}
	face := faces[req.FaceIndex]

	steps := []func() error{
		func() error { return face.Resize(dim) },
		face.RemoveBackground,
		func() error { return face.SetBackground(req.Colors) },
		face.ApplyContour,
	}
	if req.Border != nil {
		steps = append(steps, func() error { return face.SetBorder(req.Border) })
	}
	steps = append(steps,
		func() error { return face.SetBlur(m.opts.Blur) },
		func() error { return face.Save(m.retention(temp)) },
	)
	if err := runSteps(ctx, steps); err != nil {
		return "", err
	}

	m.logger.Debug("Pictures: picture processed", "path", face.Path(), "temp", temp)
	return face.Path(), nil
}

// RemoveBackgroundOnly resizes the whole upload and removes its background.
// Nothing is recorded.
func (m *Maker) RemoveBackgroundOnly(ctx context.Context, upload Upload, quality models.Quality, temp bool) (string, error) {
	dim, err := quality.Dimension()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	ext, err := uploadExtension(upload.Filename)
	if err != nil {
		return "", err
	}

	path, err := writeUpload(m.opts.WorkDir, ext, upload.Content)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	subject, err := m.processor.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to open picture: %w", err)
	}

	err = runSteps(ctx, []func() error{
		func() error { return subject.Resize(dim) },
		subject.RemoveBackground,
		func() error { return subject.Save(m.retention(temp)) },
	})
	if err != nil {
		return "", err
	}
	return subject.Path(), nil
}

// ListUserPictures returns the user's picture rows, newest first.
func (m *Maker) ListUserPictures(ctx context.Context, user *models.User) ([]models.Picture, error) {
	return m.pictures.ListByUser(ctx, user.ID)
}

// OpenUserPicture returns the path of a stored picture owned by user.
func (m *Maker) OpenUserPicture(ctx context.Context, user *models.User, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrPictureNotFound
	}

	if _, err := m.pictures.FindByFilename(ctx, user.ID, filename); err != nil {
		if errors.Is(err, repository.ErrPictureNotFound) {
			return "", ErrPictureNotFound
		}
		return "", err
	}

	path := filepath.Join(m.UserDir(user.ID), filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrPictureNotFound
		}
		return "", fmt.Errorf("failed to stat picture: %w", err)
	}
	return path, nil
}

func (m *Maker) retention(temp bool) time.Duration {
	if temp {
		return m.opts.Retention
	}
	return 0
}

func (m *Maker) mirrorPicture(ctx context.Context, userID uuid.UUID, filename, path string) {
	if m.mirror == nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		m.logger.Warn("Pictures: mirror skipped", "path", path, "error", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		m.logger.Warn("Pictures: mirror skipped", "path", path, "error", err)
		return
	}

	key := userID.String() + "/" + filename
	url, err := m.mirror.Put(ctx, key, f, info.Size(), mime.TypeByExtension(filepath.Ext(filename)))
	if err != nil {
		m.logger.Error("Pictures: failed to mirror picture", "key", key, "error", err)
		return
	}
	m.logger.Debug("Pictures: picture mirrored", "key", key, "url", url)
}

func validate(req Request) error {
	if req.Colors[0] == nil || req.Colors[1] == nil {
		return fmt.Errorf("%w: two background colors are required", ErrInvalidRequest)
	}
	if !req.Quality.Valid() {
		return fmt.Errorf("%w: unknown quality %q", ErrInvalidRequest, string(req.Quality))
	}
	if req.FaceIndex < 0 {
		return fmt.Errorf("%w: face index must not be negative", ErrInvalidRequest)
	}
	if req.Upload.Content == nil {
		return fmt.Errorf("%w: picture file is required", ErrInvalidRequest)
	}
	return nil
}

// runSteps applies processor steps in order, checking for cancellation between them.
func runSteps(ctx context.Context, steps []func() error) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return fmt.Errorf("failed to process picture: %w", err)
		}
	}
	return nil
}
