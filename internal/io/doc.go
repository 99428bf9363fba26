// Package ioutils provides file system and image processing utilities for
// report artifacts.
//
// # File Operations
//
//	// Ensure the output directory exists
//	err := ioutils.EnsureDir("albums")
//
//	// Replace a file without exposing partial writes
//	err := ioutils.WriteFileAtomic("albums/animals.json", data)
//
// # Image Processing
//
// The ImageService turns downloaded cover art into thumbnails:
//
//	svc := ioutils.NewImageService()
//	thumb, _ := svc.Thumbnail(imageData, 300)
package ioutils
