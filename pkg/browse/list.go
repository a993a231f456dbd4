package browse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// imageExtensions is the set of file extensions the viewer recognizes,
// lowercase with the leading dot. It mirrors what pkg/decode can actually
// open.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImagePath reports whether the path has a recognized image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListImageNames returns the names of all non-directory entries of dir
// with a recognized image extension, in directory order.
func ListImageNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsImagePath(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// NextInDirectory steps from current to its neighbour within the parent
// directory. The directory is re-listed on every call so that files
// created or removed since the last step are picked up; nothing about the
// listing is persisted.
//
// The returned path joins the parent of current with the chosen name. ok
// is false when the directory holds no other image.
func NextInDirectory(current string, req Request) (string, bool, error) {
	parent := filepath.Dir(current)

	names, err := ListImageNames(parent)
	if err != nil {
		return "", false, err
	}

	name, _, ok := findNext(req, filepath.Base(current), names)
	if !ok {
		return "", false, nil
	}
	return filepath.Join(parent, name), true, nil
}

// NextInList steps from current to its neighbour within an explicit,
// fixed list of paths, and returns the resulting index. No filesystem
// access is involved. ok is false when the list holds no other entry.
func NextInList(paths []string, current string, req Request) (int, bool) {
	_, idx, ok := findNext(req, current, paths)
	return idx, ok
}
