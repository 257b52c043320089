package theme

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrBadPalette wraps every palette parse failure
var ErrBadPalette = errors.New("bad palette")

// RGB is one palette entry; the session sends these straight to the Launchpad
type RGB [3]uint8

// Palette is an ordered color ramp. Roles and clip states pick from it by
// normalized position, so any GIMP palette re-skins both the TUI and the pads.
type Palette struct {
	Name   string
	Colors []RGB
}

// LoadGPL reads a GIMP .gpl palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open palette: %w", err)
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseGPL parses GIMP palette text. Header lines, comments and the
// "Columns:" line are skipped; each color line is "R G B [name]".
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Name:"):
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		case line == "", line[0] == '#', strings.HasPrefix(line, "GIMP"), strings.HasPrefix(line, "Columns"):
			continue
		}

		c, err := parseColor(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadPalette, lineNo, err)
		}
		p.Colors = append(p.Colors, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPalette, err)
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("%w: no colors", ErrBadPalette)
	}
	return p, nil
}

func parseColor(fields []string) (RGB, error) {
	if len(fields) < 3 {
		return RGB{}, fmt.Errorf("want R G B, got %q", strings.Join(fields, " "))
	}
	var c RGB
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil || v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("component %q out of 0..255", fields[i])
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// DefaultPalette is a plasma-like ramp used when no palette file is configured
func DefaultPalette() *Palette {
	return &Palette{
		Name: "plasma",
		Colors: []RGB{
			{13, 8, 135},
			{75, 3, 161},
			{125, 3, 168},
			{168, 34, 150},
			{203, 70, 121},
			{229, 107, 93},
			{248, 148, 65},
			{253, 195, 40},
			{240, 249, 33},
		},
	}
}

// Lookup interpolates the ramp at norm (clamped to 0-1)
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	switch {
	case norm <= 0 || last == 0:
		return p.Colors[0]
	case norm >= 1:
		return p.Colors[last]
	}
	pos := norm * float64(last)
	i := int(pos)
	frac := pos - float64(i)
	c0, c1 := p.Colors[i], p.Colors[i+1]
	return RGB{lerp(c0[0], c1[0], frac), lerp(c0[1], c1[1], frac), lerp(c0[2], c1[2], frac)}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
