package metadata

import (
	"bytes"
	"errors"
	"text/template"
)

const ThumbnailFilename = "nftThumbnail.svg"

var thumbnailTemplate = template.Must(template.New("thumbnail").Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="600" height="600" viewBox="0 0 600 600">` +
		`<rect width="600" height="600" rx="24" fill="#1f2937"/>` +
		`{{if .Image}}<image href="{{html .Image}}" x="100" y="80" width="400" height="400" preserveAspectRatio="xMidYMid slice"/>{{end}}` +
		`<text x="300" y="530" fill="#f9fafb" font-family="sans-serif" font-size="28" text-anchor="middle">{{html .Category}}</text>` +
		`<text x="40" y="575" fill="#9ca3af" font-family="sans-serif" font-size="18">Certifiers: {{.Certifiers}}</text>` +
		`<text x="560" y="575" fill="#9ca3af" font-family="sans-serif" font-size="18" text-anchor="end">Warranties: {{.Warranties}}</text>` +
		`</svg>`,
))

// Thumbnail is the image shown for the token in wallets and marketplaces.
type Thumbnail struct {
	Image      string
	Category   string
	Certifiers int
	Warranties int
}

func RenderThumbnail(t Thumbnail) ([]byte, error) {
	if t.Certifiers < 0 || t.Warranties < 0 {
		return nil, errors.New("thumbnail counters can't be negative")
	}

	var out bytes.Buffer
	if err := thumbnailTemplate.Execute(&out, t); err != nil {
		return nil, errors.New("failed to render the thumbnail: " + err.Error())
	}

	return out.Bytes(), nil
}
