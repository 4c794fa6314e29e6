//go:build ORT

package provider

import (
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
)

// ortLibDirEnv overrides where the ONNX Runtime shared library is loaded from.
const ortLibDirEnv = "ORT_LIB_DIR"

func newHugotSession() (*hugot.Session, error) {
	var opts []options.WithOption
	if dir := ortLibDir(); dir != "" {
		opts = append(opts, options.WithOnnxLibraryPath(dir))
	}
	return hugot.NewORTSession(opts...)
}

// ortLibDir returns $ORT_LIB_DIR, else the first existing lib/ next to the
// binary or under the working directory, else "" for hugot's default.
func ortLibDir() string {
	if dir := os.Getenv(ortLibDirEnv); dir != "" {
		return dir
	}

	var roots []string
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}

	for _, root := range roots {
		dir := filepath.Join(root, "lib")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
