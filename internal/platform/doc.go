// Package platform holds the static per-marketplace rule table and the
// rendering logic that turns a generated metadata draft into a final,
// rule-conformant ImageMetadata rendition.
//
// Rendering is the only place titles, descriptions, and keyword lists are
// trimmed; everything upstream works with unconstrained drafts and everything
// downstream (CSV export, embedding, upload) treats renditions as immutable.
package platform
