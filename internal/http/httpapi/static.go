package httpapi

import (
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// publicDir is an http.FileSystem that hides dotfiles (.env, .git) and
// refuses directory listings. A directory is only served when it has an
// index.html.
type publicDir struct {
	root http.FileSystem
}

func newPublicDir(dir string) publicDir {
	return publicDir{root: http.Dir(filepath.Clean(dir))}
}

func (d publicDir) Open(name string) (http.File, error) {
	for _, segment := range strings.Split(name, "/") {
		if strings.HasPrefix(segment, ".") {
			return nil, fs.ErrNotExist
		}
	}
	f, err := d.root.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := d.root.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, fs.ErrNotExist
		}
		index.Close()
	}
	return f, nil
}

func fileServer(dir string) http.Handler {
	return http.FileServer(newPublicDir(dir))
}
