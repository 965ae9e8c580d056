// Package imagecache stores downloaded cover art on disk, one
// subdirectory per provider type under a configured root, with filenames
// keyed by game title.
package imagecache
