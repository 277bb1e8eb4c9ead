// Package analysis implements the first pipeline stage: it decodes each
// source image, measures dimensions, brightness, contrast, and dominant
// colors, reads camera EXIF data, and computes a perceptual difference hash
// used to flag near-duplicate submissions for manual review.
package analysis
