package storagesvc

import (
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/elevezen/elevezen/core"
)

// LocalStorage saves uploaded files under root on the local disk and serves
// them back under urlPrefix (e.g. "/media").
type LocalStorage struct {
	root      string
	urlPrefix string
}

var _ core.FileStorage = (*LocalStorage)(nil)

func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media root")
	}
	return &LocalStorage{root: root, urlPrefix: urlPrefix}, nil
}

// Root returns the directory files are saved under.
func (s *LocalStorage) Root() string { return s.root }

func (s *LocalStorage) Save(bucket, name string, r io.Reader) (string, error) {
	name = filepath.Base(name) // no path traversal
	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating bucket dir")
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	defer f.Close()

	if _, err = io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return path.Join(s.urlPrefix, bucket, name), nil
}

func (s *LocalStorage) Delete(bucket, name string) error {
	err := os.Remove(filepath.Join(s.root, bucket, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
