package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/daryltucker/qr-bench/internal/model"
)

type fixedRand struct{ v int }

func (f fixedRand) IntN(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

func TestBackgrounds(t *testing.T) {
	t.Parallel()

	t.Run("builtins have banner size", func(t *testing.T) {
		t.Parallel()
		for _, name := range BuiltinNames() {
			img, err := LoadBackground(BuiltinPrefix + name)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", name, err)
			}
			if img.Bounds().Size() != Banner {
				t.Errorf("%s: expected %v, got %v", name, Banner, img.Bounds().Size())
			}
		}
	})

	t.Run("unknown builtin fails", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadBackground(BuiltinPrefix + "plaid"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("loads file backgrounds", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bg.png")
		if err := imaging.Save(imaging.New(320, 200, color.Gray{Y: 80}), path); err != nil {
			t.Fatal(err)
		}
		img, err := LoadBackground(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 200 {
			t.Errorf("unexpected bounds %v", img.Bounds())
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		t.Parallel()
		if _, err := LoadBackground(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("stem strips directory and extension", func(t *testing.T) {
		t.Parallel()
		if got := Stem("./backgrounds/hacker.jpg"); got != "hacker" {
			t.Errorf("expected hacker, got %q", got)
		}
		if got := Stem("builtin:white"); got != "white" {
			t.Errorf("expected white, got %q", got)
		}
	})
}

func TestPlaceRandom(t *testing.T) {
	t.Parallel()

	bg := imaging.New(100, 50, color.White)
	overlay := imaging.New(20, 10, color.Black)

	t.Run("stays inside background at the far edge", func(t *testing.T) {
		t.Parallel()
		out, pos, err := PlaceRandom(bg, overlay, fixedRand{v: 1 << 20})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pos != image.Pt(80, 40) {
			t.Errorf("expected far corner (80,40), got %v", pos)
		}
		if c := out.NRGBAAt(99, 49); c.R != 0 {
			t.Errorf("expected overlay pixel at bottom-right, got %v", c)
		}
	})

	t.Run("does not modify the background", func(t *testing.T) {
		t.Parallel()
		if _, _, err := PlaceRandom(bg, overlay, fixedRand{}); err != nil {
			t.Fatal(err)
		}
		if c := bg.NRGBAAt(0, 0); c.R != 255 {
			t.Errorf("background was modified: %v", c)
		}
	})

	t.Run("rejects overlays larger than the background", func(t *testing.T) {
		t.Parallel()
		if _, _, err := PlaceRandom(overlay, bg, fixedRand{}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestDegrade(t *testing.T) {
	t.Parallel()

	t.Run("writes both artifacts and scales", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		size := model.Size{Width: 80, Height: 20}
		paths := ArtifactPaths(dir, "white", 3, model.ECLevelL, "#AA336A", 80, size)

		data, err := Degrade(imaging.New(160, 80, color.White), 80, size, paths)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, p := range []string{paths.Encoded, paths.Scaled} {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("expected artifact %s: %v", p, err)
			}
		}
		gray, err := ReadGray(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gray.Bounds().Dx() != 80 || gray.Bounds().Dy() != 20 {
			t.Errorf("expected 80x20, got %v", gray.Bounds())
		}
	})

	t.Run("artifact names follow the sweep parameters", func(t *testing.T) {
		t.Parallel()
		p := ArtifactPaths("images", "hacker", 4, model.ECLevelH, "#AA336A", 50, model.Size{Width: 800, Height: 150})
		if filepath.Base(p.Encoded) != "hacker_bs_4_ec_H_bc_AA336A_q50.jpg" {
			t.Errorf("unexpected name %s", p.Encoded)
		}
		if filepath.Base(p.Scaled) != "hacker_bs_4_ec_H_bc_AA336A_q50_800x150.jpg" {
			t.Errorf("unexpected name %s", p.Scaled)
		}
	})

	t.Run("concurrent writers replace artifacts whole", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "shared.jpg")
		if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
			t.Fatal(err)
		}

		payloads := [][]byte{bytes.Repeat([]byte{'a'}, 64<<10), bytes.Repeat([]byte{'b'}, 32<<10)}
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := writeAtomic(path, payloads[i%2]); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, payloads[0]) && !bytes.Equal(got, payloads[1]) {
			t.Errorf("expected one complete payload, got %d bytes", len(got))
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("expected no temp files left behind, found %d entries", len(entries))
		}
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		t.Parallel()
		if err := writeAtomic("", []byte("x")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty directory writes nothing", func(t *testing.T) {
		t.Parallel()
		if p := ArtifactPaths("", "x", 1, model.ECLevelL, "#000000", 90, model.Size{Width: 1, Height: 1}); p != (Artifacts{}) {
			t.Errorf("expected empty artifacts, got %+v", p)
		}
	})
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	src := imaging.New(40, 20, color.Gray{Y: 60})
	for x := 20; x < 40; x++ {
		for y := 0; y < 20; y++ {
			src.Set(x, y, color.Gray{Y: 200})
		}
	}

	out := Preprocess(src, Params{Size: model.Size{Width: 80, Height: 40}, BlurSigma: 1.1, Threshold: 128})

	if out.Bounds().Dx() != 80 || out.Bounds().Dy() != 40 {
		t.Fatalf("expected 80x40, got %v", out.Bounds())
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 80; x++ {
			c := out.NRGBAAt(x, y)
			if c.R != 0 && c.R != 255 {
				t.Fatalf("pixel (%d,%d) not binary: %v", x, y, c)
			}
		}
	}
	if out.NRGBAAt(5, 5).R != 0 || out.NRGBAAt(75, 5).R != 255 {
		t.Error("expected dark left half and bright right half")
	}

	t.Run("zero size keeps dimensions", func(t *testing.T) {
		t.Parallel()
		kept := Preprocess(src, Params{Threshold: 128})
		if kept.Bounds().Size() != src.Bounds().Size() {
			t.Errorf("expected %v, got %v", src.Bounds().Size(), kept.Bounds().Size())
		}
	})
}
