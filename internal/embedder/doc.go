// Package embedder writes generated metadata back into image files. JPEG
// sources get their EXIF ImageDescription rewritten in place; every source
// can additionally receive an XMP sidecar carrying the title, description,
// and keyword set so downstream tools pick the metadata up without a
// marketplace CSV.
package embedder
