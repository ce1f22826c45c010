package ui

import "strings"

var bannerArt = []string{
	`    _    ____   ____ _   _ ____  `,
	`   / \  |  _ \ / ___| | | / ___| `,
	`  / _ \ | |_) | |  _| | | \___ \ `,
	` / ___ \|  _ <| |_| | |_| |___) |`,
	`/_/   \_\_| \_\\____|\___/|____/ `,
}

// Tagline is printed under the banner
const Tagline = "The All-Seeing Camera Scanner"

// RenderBanner returns the styled banner with tagline and version
func RenderBanner(version string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, line := range bannerArt {
		b.WriteString("  ")
		b.WriteString(BannerStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	tagline := Tagline
	if version != "" {
		tagline += " | " + version
	}
	b.WriteString(TaglineStyle.Render(tagline))
	b.WriteString("\n")
	return b.String()
}
