// Package zip bundles generated images into a single archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

type Asset struct {
	Filename string
	Data     []byte
	Modified time.Time
}

// Write streams assets into a zip archive on w. Names are cleaned and made
// unique by suffixing -2, -3, ... before the extension.
func Write(w io.Writer, assets []Asset) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(assets))
	for _, asset := range assets {
		name := uniqueName(cleanName(asset.Filename), used)
		hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: asset.Modified}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := fw.Write(asset.Data); err != nil {
			return fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// ArchiveAssets returns the archive of assets in memory.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Write(buf, assets); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cleanName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	if name == "" {
		return "asset"
	}
	return name
}

func uniqueName(name string, used map[string]int) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := path.Ext(name)
	candidate := fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
	return uniqueName(candidate, used)
}
