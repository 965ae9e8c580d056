package imagecache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamedex/internal/errkind"
	"gamedex/internal/logging"
	"gamedex/internal/sourcedata"
)

// Store caches downloaded cover art under a root directory, one
// subdirectory per provider type, filename keyed by game title.
type Store struct {
	root       string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Store) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errkind.Wrap(errkind.ErrConfiguration, "imagecache", "new", "image cache directory required", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errkind.Wrap(errkind.ErrConfiguration, "imagecache", "new", "create image cache directory", err)
	}
	store := &Store{
		root:       dir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewComponentLogger(logger, "imagecache"),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// PathFor returns the deterministic cache path for a title under a
// provider subdirectory. Path separators in the title are flattened so a
// hostile title cannot escape the cache root.
func (s *Store) PathFor(providerDir, title, ext string) string {
	name := strings.NewReplacer("/", "-", "\\", "-").Replace(title)
	return filepath.Join(s.root, providerDir, name+ext)
}

// Exists reports whether a cached file is present and non-empty.
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// extensionFor maps a response content type to a file extension, falling
// back to the URL path.
func extensionFor(contentType, sourceURL string) string {
	switch {
	case strings.Contains(contentType, "jpeg"):
		return ".jpg"
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "bmp"):
		return ".bmp"
	}
	if ext := strings.ToLower(filepath.Ext(sourceURL)); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".jpg"
}

// Download fetches an image and writes it into the provider subdirectory,
// returning the local path.
func (s *Store) Download(ctx context.Context, sourceURL, providerDir, title string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errkind.Wrap(errkind.ErrTransient, "imagecache", "download", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errkind.Wrap(errkind.ErrTransient, "imagecache", "download",
			fmt.Sprintf("%s returned %d", sourceURL, resp.StatusCode), nil)
	}

	ext := extensionFor(resp.Header.Get("Content-Type"), sourceURL)
	path := s.PathFor(providerDir, title, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create provider directory: %w", err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create cache file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return "", errkind.Wrap(errkind.ErrTransient, "imagecache", "download", "read image body", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", err
	}

	s.logger.Debug("image cached",
		logging.String(logging.FieldEventType, "image_cached"),
		logging.String(logging.FieldTitle, title),
		logging.String("path", path))
	return path, nil
}

// EnsureLocal makes sure an image reference is backed by a file on disk,
// downloading from its source URL when the cached copy is missing. The
// reference is updated in place with the new local path.
func (s *Store) EnsureLocal(ctx context.Context, ref *sourcedata.ImageRef, providerDir, title string) error {
	if ref == nil {
		return nil
	}
	if Exists(ref.LocalPath) {
		return nil
	}
	if ref.SourceURL == "" {
		return errors.New("image has no cached file and no source url")
	}
	path, err := s.Download(ctx, ref.SourceURL, providerDir, title)
	if err != nil {
		return err
	}
	ref.LocalPath = path
	return nil
}
