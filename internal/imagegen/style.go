package imagegen

// DefaultStyle is sent to the vendor for any style outside the table.
const DefaultStyle = "default"

var vendorStyles = map[string]string{
	"watercolor": "watercolor",
	"photo":      "photographic",
	"cartoon":    "cartoon",
	"oil":        "oil-painting",
	"art":        "artistic",
}

// MapStyle translates a user-facing style token into the vendor's style name.
// Keys are case-sensitive; unknown and empty tokens map to DefaultStyle.
func MapStyle(style string) string {
	if mapped, ok := vendorStyles[style]; ok {
		return mapped
	}
	return DefaultStyle
}
