package ggrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/user/clipedit/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 100, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	img := canvas.ToImage()
	bounds := img.Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeJPEG(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 50, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	for _, quality := range []int{80, 0, 500} {
		data, err := r.EncodeImage(img, ports.FormatJPEG, quality)
		if err != nil {
			t.Fatalf("EncodeImage(quality=%d) failed: %v", quality, err)
		}

		decoded, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if b := decoded.Bounds(); b.Dx() != 50 || b.Dy() != 40 {
			t.Errorf("expected 50x40, got %dx%d", b.Dx(), b.Dy())
		}
	}
}

func TestRenderer_EncodePNG(t *testing.T) {
	r := New()

	data, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 30, 30)), ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 30 || b.Dy() != 30 {
		t.Errorf("expected 30x30, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	if _, err := New().EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.ImageFormat(99), 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRenderer_ResizeImage(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	for _, size := range []int{50, 200} {
		resized := r.ResizeImage(img, size, size/2)
		bounds := resized.Bounds()
		if bounds.Dx() != size || bounds.Dy() != size/2 {
			t.Errorf("expected %dx%d, got %dx%d", size, size/2, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	// Draw red rectangle
	canvas.DrawRect(10, 10, 30, 30, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()

	// Check that pixel inside rectangle is red
	c := img.At(20, 20)
	red, _, _, _ := c.RGBA()
	if red == 0 {
		t.Error("expected red pixel inside rectangle")
	}
}

func TestCanvas_DrawRectStroke(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	// Draw rectangle stroke
	canvas.DrawRectStroke(10, 10, 30, 30, color.Black, 2)

	img := canvas.ToImage()

	// Check border pixel
	c := img.At(10, 10)
	_, _, _, a := c.RGBA()
	if a == 0 {
		t.Error("expected non-transparent pixel on border")
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	// Draw black line
	canvas.DrawLine(0, 50, 100, 50, color.Black, 2)

	img := canvas.ToImage()

	// Check pixel on line
	c := img.At(50, 50)
	r1, g1, b1, _ := c.RGBA()
	// Should be dark (not white)
	if r1 == 65535 && g1 == 65535 && b1 == 65535 {
		t.Error("expected non-white pixel on line")
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 50, color.White)

	style := ports.TextStyle{
		FontSize: 14,
		Color:    color.Black,
		Align:    ports.AlignLeft,
	}

	// Should not panic
	canvas.DrawText("Hello World", 10, 25, style)

	img := canvas.ToImage()
	if img == nil {
		t.Error("expected image to be created")
	}
}
