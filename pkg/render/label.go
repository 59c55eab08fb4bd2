package render

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 24.0
)

// fontSize returns a font size that lets text of textLen characters fit a
// w by h box, clamped to a readable range.
func fontSize(w, h float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := h * fontHeightRatio
	byWidth := (w * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// truncateLabel shortens label so it fits width at the given font size.
func truncateLabel(label string, width, size float64) string {
	maxChars := max(int(width*fontWidthRatio/(size*fontCharWidth)), 3)
	r := []rune(label)
	if len(r) <= maxChars {
		return label
	}
	return string(r[:maxChars-2]) + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// palette holds item fill colors, cycled in declaration order.
var palette = []string{
	"#dbeafe", "#dcfce7", "#fef3c7", "#fce7f3",
	"#ede9fe", "#cffafe", "#fee2e2", "#e5e7eb",
}

func fillColor(i int) string { return palette[i%len(palette)] }
