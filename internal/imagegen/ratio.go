package imagegen

import (
	"strconv"
	"strings"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 1024
)

// Dimensions is a resolved output size in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// Size renders the dimensions as the vendor "W*H" token.
func (d Dimensions) Size() string {
	return strconv.Itoa(d.Width) + "*" + strconv.Itoa(d.Height)
}

var namedRatios = map[string]Dimensions{
	"1:1":  {Width: 1024, Height: 1024},
	"4:3":  {Width: 1024, Height: 768},
	"16:9": {Width: 1024, Height: 576},
}

// ResolveRatio turns a ratio token into pixel dimensions. Named ratios come
// from a fixed table, "W*H" tokens are parsed literally and everything else,
// including malformed literals, resolves to 1024x1024.
func ResolveRatio(ratio string) Dimensions {
	if dims, ok := namedRatios[ratio]; ok {
		return dims
	}
	fallback := Dimensions{Width: DefaultWidth, Height: DefaultHeight}
	if !strings.Contains(ratio, "*") {
		return fallback
	}
	parts := strings.Split(ratio, "*")
	if len(parts) != 2 {
		return fallback
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || width <= 0 {
		return fallback
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || height <= 0 {
		return fallback
	}
	return Dimensions{Width: width, Height: height}
}
