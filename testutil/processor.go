package testutil

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/krishkalaria12/pic-profile-maker/imaging"
)

// ErrStepFailed is returned by a FakeFace step named in FakeProcessor.FailStep.
var ErrStepFailed = errors.New("fake processor step failed")

// FakeProcessor returns Faces deterministic faces for every upload and writes
// a small placeholder file on Save.
type FakeProcessor struct {
	OutDir    string
	Faces     int
	FailStep  string
	DetectErr error

	mu      sync.Mutex
	inputs  []string
	existed []bool
	faces   []*FakeFace
}

func (p *FakeProcessor) DetectFaces(_ context.Context, path string) ([]imaging.Face, error) {
	p.record(path)
	if p.DetectErr != nil {
		return nil, p.DetectErr
	}

	faces := make([]imaging.Face, 0, p.Faces)
	for i := 0; i < p.Faces; i++ {
		faces = append(faces, p.newFace(path, i))
	}
	return faces, nil
}

func (p *FakeProcessor) Open(_ context.Context, path string) (imaging.Face, error) {
	p.record(path)
	if p.DetectErr != nil {
		return nil, p.DetectErr
	}
	return p.newFace(path, 0), nil
}

// Inputs returns every path handed to the processor.
func (p *FakeProcessor) Inputs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.inputs...)
}

// InputExisted reports, per input, whether the file was on disk when the processor saw it.
func (p *FakeProcessor) InputExisted() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.existed...)
}

// AllFaces returns every face handed out so far.
func (p *FakeProcessor) AllFaces() []*FakeFace {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*FakeFace(nil), p.faces...)
}

func (p *FakeProcessor) record(path string) {
	_, err := os.Stat(path)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs = append(p.inputs, path)
	p.existed = append(p.existed, err == nil)
}

func (p *FakeProcessor) newFace(path string, index int) *FakeFace {
	base := filepath.Base(path)
	f := &FakeFace{
		Index:    index,
		outDir:   p.OutDir,
		stem:     fmt.Sprintf("%s_face%d", strings.TrimSuffix(base, filepath.Ext(base)), index),
		failStep: p.FailStep,
	}

	p.mu.Lock()
	p.faces = append(p.faces, f)
	p.mu.Unlock()
	return f
}

// FakeFace records the calls made on it.
type FakeFace struct {
	Index     int
	Calls     []string
	Size      int
	Colors    imaging.ColorPair
	Border    color.Color
	Blur      int
	Retention time.Duration
	outDir    string
	stem      string
	failStep  string
	path      string
}

func (f *FakeFace) step(name string) error {
	f.Calls = append(f.Calls, name)
	if f.failStep == name {
		return ErrStepFailed
	}
	return nil
}

func (f *FakeFace) Resize(size int) error {
	f.Size = size
	return f.step("Resize")
}

func (f *FakeFace) RemoveBackground() error {
	return f.step("RemoveBackground")
}

func (f *FakeFace) SetBackground(colors imaging.ColorPair) error {
	f.Colors = colors
	return f.step("SetBackground")
}

func (f *FakeFace) ApplyContour() error {
	return f.step("ApplyContour")
}

func (f *FakeFace) SetBorder(c color.Color) error {
	f.Border = c
	return f.step("SetBorder")
}

func (f *FakeFace) SetBlur(strength int) error {
	f.Blur = strength
	return f.step("SetBlur")
}

func (f *FakeFace) Save(retention time.Duration) error {
	f.Retention = retention
	if err := f.step("Save"); err != nil {
		return err
	}

	path := filepath.Join(f.outDir, f.stem+".png")
	if err := os.WriteFile(path, []byte("processed"), 0o644); err != nil {
		return err
	}
	f.path = path
	return nil
}

func (f *FakeFace) Path() string {
	return f.path
}
