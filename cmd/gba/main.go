// Command gba is the display build of the core: an ebiten window front-end
// plus a -headless PNG/CRC32 capture mode, adapted from the teacher's
// cmd/gbemu/main.go (CLIFlags/parseFlags shape, runHeadless/saveFramePNG,
// log.Fatalf error handling) to the GBA's BIOS+cartridge boot model in
// place of DMG's boot-ROM-or-post-boot-defaults split.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tinygba/gba/internal/cart"
	"github.com/tinygba/gba/internal/config"
	"github.com/tinygba/gba/internal/gba"
	"github.com/tinygba/gba/internal/ppu"
	"github.com/tinygba/gba/internal/ui"
)

type cliFlags struct {
	ROMPath  string
	BIOSPath string
	Scale    int
	Title    string
	Trace    bool

	Headless bool
	Frames   int
	PNGOut   string
	Expect   string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to GBA ROM image")
	flag.StringVar(&f.BIOSPath, "bios", "", "path to 16 KiB GBA BIOS image")
	flag.IntVar(&f.Scale, "scale", 3, "window scale")
	flag.StringVar(&f.Title, "title", "gba", "window title")
	flag.BoolVar(&f.Trace, "trace", false, "enable instruction tracing")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.Parse()
	return f
}

func mustRead(path, what string) []byte {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", what, err)
	}
	return b
}

// bgr555ToRGBA expands the PPU's packed BGR555 framebuffer into a standard
// RGBA8888 image buffer, the same channel-expansion ui.App.blit performs
// for on-screen presentation.
func bgr555ToRGBA(fb *[ppu.ScreenWidth * ppu.ScreenHeight]uint16) []byte {
	out := make([]byte, len(fb)*4)
	for i, px := range fb {
		r := uint8(px&0x1F) << 3
		g := uint8((px>>5)&0x1F) << 3
		b := uint8((px>>10)&0x1F) << 3
		o := i * 4
		out[o+0], out[o+1], out[o+2], out[o+3] = r, g, b, 0xFF
	}
	return out
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func runHeadless(m *gba.Machine, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}
	start := time.Now()
	for i := 0; i < frames; i++ {
		m.RunFrame()
	}
	dur := time.Since(start)

	rgba := bgr555ToRGBA(m.Framebuffer())
	crc := crc32.ChecksumIEEE(rgba)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(rgba, ppu.ScreenWidth, ppu.ScreenHeight, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}
	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func main() {
	f := parseFlags()
	if f.ROMPath == "" {
		log.Fatal("-rom is required")
	}
	if f.BIOSPath == "" {
		log.Fatal("-bios is required")
	}

	romData := mustRead(f.ROMPath, "rom")
	rom, err := cart.Load(romData)
	if err != nil {
		log.Fatalf("load cart: %v", err)
	}
	log.Printf("ROM: %q (%d bytes)", rom.Title(), rom.Len())

	bios := mustRead(f.BIOSPath, "bios")
	m, err := gba.New(bios, rom)
	if err != nil {
		log.Fatalf("init machine: %v", err)
	}

	if f.Headless {
		if err := runHeadless(m, f.Frames, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg := config.Load(config.Config{Title: f.Title, Scale: f.Scale, BIOSPath: f.BIOSPath, Trace: f.Trace})
	app := ui.NewApp(cfg, m)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	app.SaveSettings()
}
