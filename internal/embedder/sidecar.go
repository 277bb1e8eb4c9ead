package embedder

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"stockmate/internal/catalog"
)

// SidecarPath returns the XMP sidecar location for a source image.
func SidecarPath(sourcePath string) string {
	return sourcePath + ".xmp"
}

// writeSidecar renders an XMP packet with the Dublin Core title, description,
// and subject keywords next to the source image.
func writeSidecar(sourcePath string, draft catalog.Draft) (string, error) {
	path := SidecarPath(sourcePath)

	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/">` + "\n")
	b.WriteString(`  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` + "\n")
	b.WriteString(`    <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">` + "\n")

	b.WriteString("      <dc:title><rdf:Alt>\n")
	fmt.Fprintf(&b, "        <rdf:li xml:lang=\"x-default\">%s</rdf:li>\n", escapeXML(draft.Title))
	b.WriteString("      </rdf:Alt></dc:title>\n")

	if strings.TrimSpace(draft.Description) != "" {
		b.WriteString("      <dc:description><rdf:Alt>\n")
		fmt.Fprintf(&b, "        <rdf:li xml:lang=\"x-default\">%s</rdf:li>\n", escapeXML(draft.Description))
		b.WriteString("      </rdf:Alt></dc:description>\n")
	}

	keywords := append(append([]string{}, draft.Keywords...), draft.KeywordsZH...)
	if len(keywords) > 0 {
		b.WriteString("      <dc:subject><rdf:Bag>\n")
		for _, kw := range keywords {
			if trimmed := strings.TrimSpace(kw); trimmed != "" {
				fmt.Fprintf(&b, "        <rdf:li>%s</rdf:li>\n", escapeXML(trimmed))
			}
		}
		b.WriteString("      </rdf:Bag></dc:subject>\n")
	}

	b.WriteString("    </rdf:Description>\n")
	b.WriteString("  </rdf:RDF>\n")
	b.WriteString("</x:xmpmeta>\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write sidecar: %w", err)
	}
	return path, nil
}

func escapeXML(value string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(value)); err != nil {
		return value
	}
	return b.String()
}
