package ssr

import (
	"os"
	"path/filepath"
)

// Default locations written by the tuono build. filepath.FromSlash gives
// back slashes on Windows.
var (
	ProdBundlePath   = filepath.FromSlash("./out/server/prod-server.js")
	DevBundlePath    = filepath.FromSlash("./.tuono/server/dev-server.js")
	FallbackPagePath = filepath.FromSlash("./.tuono/index.html")
)

// PayloadPlaceholder is replaced with the payload in the fallback page.
const PayloadPlaceholder = "[SERVER_PAYLOAD]"

// FallbackNotLoaded is served as the page body when the fallback page
// itself cannot be read.
const FallbackNotLoaded = "Fallback HTML not loaded"

// FileReader reads whole files. OSFiles is the production implementation.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// OSFiles reads from the local filesystem.
type OSFiles struct{}

func (OSFiles) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// readBundle reads path as text.
func readBundle(files FileReader, path string) (string, error) {
	data, err := files.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loadBundle is readBundle for callers that only care whether the read
// worked.
func loadBundle(files FileReader, path string) (string, bool) {
	s, err := readBundle(files, path)
	return s, err == nil
}
