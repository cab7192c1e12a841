// Package audio plays a sound when a toast is shown. Each toast kind maps to
// its own WAV, OGG or MP3 file, decoded once with beep and cached. The cache
// entry for a file is dropped when the file changes on disk.
package audio
