package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/tsawler/pagevisuals/codec"
	"github.com/tsawler/pagevisuals/internal/pdftest"
	"github.com/tsawler/pagevisuals/model"
	"github.com/tsawler/pagevisuals/reader"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunInputError(t *testing.T) {
	cause := errors.New("no header")
	e := New(&fakeBackend{countErr: cause}, fakeCodec{}, DefaultConfig()).WithLogger(quiet)
	res, err := e.Run(context.Background())
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	var ie *InputError
	if !errors.As(err, &ie) || !errors.Is(err, cause) {
		t.Errorf("err = %v, want InputError wrapping the cause", err)
	}
}

func TestRunEmptyPage(t *testing.T) {
	backend := &fakeBackend{pages: []fakePage{
		{
			images:   []model.ImageCandidate{cand(0, "a", 200, 200, model.EncodingPNG)},
			drawings: []model.VectorDrawing{drawing(0, 0, 0, 100, 100)},
		},
		{},
	}}
	res, err := New(backend, fakeCodec{}, DefaultConfig()).WithLogger(quiet).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.PageCount != 2 || len(res.Images) != 1 || len(res.Regions) != 1 || len(res.Clips) != 1 {
		t.Fatalf("result = %+v", res)
	}
	for _, img := range res.Images {
		if img.Page == 1 {
			t.Error("empty page produced an image")
		}
	}
	for _, c := range res.Clips {
		if c.Page == 1 {
			t.Error("empty page produced a clip")
		}
	}
}

func TestRunAllFail(t *testing.T) {
	bad := cand(0, "bad", 200, 200, model.EncodingOther)
	bad.Data = []byte("corrupt")
	backend := &fakeBackend{
		pages: []fakePage{{
			images:   []model.ImageCandidate{bad},
			drawings: []model.VectorDrawing{drawing(0, 0, 0, 100, 100)},
		}},
		rasterErr: map[int]error{0: errors.New("boom")},
	}
	res, err := New(backend, fakeCodec{}, DefaultConfig()).WithLogger(quiet).Run(context.Background())
	if err != nil {
		t.Fatalf("per-item failures must not fail the run: %v", err)
	}
	if len(res.Images) != 0 || len(res.Clips) != 0 {
		t.Errorf("result = %+v, want no artifacts", res)
	}
	if len(res.Regions) != 1 {
		t.Errorf("regions = %v, want the detected region", res.Regions)
	}
	if len(res.Outcomes) != 2 {
		t.Errorf("outcomes = %+v", res.Outcomes)
	}
}

func TestRunDeterministic(t *testing.T) {
	backend := &fakeBackend{}
	for p := 0; p < 5; p++ {
		backend.pages = append(backend.pages, fakePage{
			images: []model.ImageCandidate{
				cand(p, "x", 300, 200, model.EncodingJPEG),
				cand(p, "y", 200, 200, model.EncodingPNG),
				cand(p, "z", 150, 150, model.EncodingPNG),
			},
			drawings: []model.VectorDrawing{
				drawing(p, 0, 0, 100, 100),
				drawing(p, 50, 50, 150, 150),
				drawing(p, 300, 300, 400, 400),
				drawing(p, 600, 0, 700, 80),
			},
		})
	}
	cfg := DefaultConfig()
	cfg.MaxTotalImages = 7
	cfg.MaxVectorRegionsTotal = 7
	cfg.RenderWorkers = 3

	first, err := New(backend, fakeCodec{}, cfg).WithLogger(quiet).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := New(backend, fakeCodec{}, cfg).WithLogger(quiet).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Images, second.Images) ||
		!reflect.DeepEqual(first.Regions, second.Regions) ||
		!reflect.DeepEqual(first.Clips, second.Clips) {
		t.Error("two runs differ")
	}
	if len(first.Images) != 7 || len(first.Regions) != 7 || len(first.Clips) != 7 {
		t.Errorf("counts = %d/%d/%d, want 7 each", len(first.Images), len(first.Regions), len(first.Clips))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := &fakeBackend{pages: make([]fakePage, 2)}
	if _, err := New(backend, fakeCodec{}, DefaultConfig()).WithLogger(quiet).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunWithReader(t *testing.T) {
	b := pdftest.New()
	jpg := pdftest.JPEG(200, 150)
	im := b.AddStream("/Type /XObject /Subtype /Image /Width 200 /Height 150 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode", jpg)
	data := b.Document(
		pdftest.Page{
			Resources: fmt.Sprintf("<< /XObject << /Im1 %d 0 R >> >>", im),
			Content:   "q 200 0 0 150 50 500 cm /Im1 Do Q 0 0 1 rg 100 100 100 60 re f 150 120 100 60 re f",
		},
		pdftest.Page{Content: "BT (nothing visual) Tj ET"},
	)
	r, err := reader.NewReader(data)
	if err != nil {
		t.Fatal(err)
	}

	res, err := New(r, codec.New(), DefaultConfig()).WithLogger(quiet).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.PageCount != 2 {
		t.Errorf("PageCount = %d", res.PageCount)
	}
	if len(res.Images) != 1 || res.Images[0].Blob.MIME != model.MIMEJPEG || !bytes.Equal(res.Images[0].Blob.Data, jpg) {
		t.Fatalf("images = %d, want the JPEG passed through", len(res.Images))
	}

	wantRect := model.Rect{X0: 94, Y0: 606, X1: 256, Y1: 698}
	if len(res.Regions) != 1 || res.Regions[0].Rect != wantRect {
		t.Fatalf("regions = %v, want %v", res.Regions, wantRect)
	}
	if len(res.Clips) != 1 {
		t.Fatalf("clips = %d", len(res.Clips))
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(res.Clips[0].Blob.Data))
	if err != nil {
		t.Fatalf("clip is not a PNG: %v", err)
	}
	if cfg.Width != 324 || cfg.Height != 184 {
		t.Errorf("clip is %dx%d, want 324x184", cfg.Width, cfg.Height)
	}
}

var (
	_ Backend = (*reader.Reader)(nil)
	_ Codec   = (*codec.Codec)(nil)
)
