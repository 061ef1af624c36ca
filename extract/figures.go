package extract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultFigurePattern selects the files directly inside the figures
// directory. Use "**/*" to descend into subdirectories.
const DefaultFigurePattern = "*"

// imageExtensions are the figure files picked up from the figures directory.
var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// figurePage matches partitioner output names such as figure-3-1.jpg.
var figurePage = regexp.MustCompile(`^figure-(\d+)-\d+\.`)

// figure is an image file found in the figures directory.
type figure struct {
	path      string
	name      string
	page      int
	mediaType string
}

// listFigures returns the image files under dir matching pattern, sorted by
// relative path. Matches without an image extension are ignored.
// A missing directory yields no figures.
func listFigures(dir, pattern string) ([]figure, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("scanning figures in %s: %w", dir, err)
	}

	var figures []figure
	for _, match := range matches {
		mediaType, ok := imageMediaType(match)
		if !ok {
			continue
		}
		figures = append(figures, figure{
			path:      filepath.Join(dir, filepath.FromSlash(match)),
			name:      match,
			page:      pageFromFigureName(path.Base(match)),
			mediaType: mediaType,
		})
	}
	slices.SortFunc(figures, func(a, b figure) int { return strings.Compare(a.name, b.name) })
	return figures, nil
}

func imageMediaType(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	mediaType, ok := imageExtensions[ext]
	return mediaType, ok
}

func pageFromFigureName(name string) int {
	m := figurePage.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return page
}
