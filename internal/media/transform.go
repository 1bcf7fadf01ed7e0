package media

import "fmt"

// SocialFormat is a fixed output geometry for social network images.
type SocialFormat struct {
	Width       int
	Height      int
	AspectRatio string
}

// SocialFormats are the supported share geometries, keyed by display name.
var SocialFormats = map[string]SocialFormat{
	"Instagram Square (1:1)":   {Width: 1080, Height: 1080, AspectRatio: "1:1"},
	"Instagram Portrait (4:5)": {Width: 1080, Height: 1350, AspectRatio: "4:5"},
	"Twitter Post (16:9)":      {Width: 1200, Height: 675, AspectRatio: "16:9"},
	"Twitter Header (3:1)":     {Width: 1500, Height: 500, AspectRatio: "3:1"},
	"Facebook Cover (205:78)":  {Width: 820, Height: 312, AspectRatio: "205:78"},
}

// Transform renders the format as a CDN transformation segment. The crop
// fills the target box and lets the CDN pick the focal point.
func (f SocialFormat) Transform() string {
	return fmt.Sprintf("w_%d,h_%d,c_fill,g_auto", f.Width, f.Height)
}

const (
	// VideoPreviewTransform produces the short hover preview used by the
	// catalog cards.
	VideoPreviewTransform = "w_400,h_225,c_fill,g_auto,e_preview:duration_15"

	// VideoDownloadTransform serves the full rendition with an attachment
	// disposition so browsers save instead of play.
	VideoDownloadTransform = "fl_attachment,q_auto"
)
