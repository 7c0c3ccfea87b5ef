package extension

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/winify/pkg/config"
	"github.com/arthur-debert/winify/pkg/errors"
	"github.com/arthur-debert/winify/pkg/logging"
	"github.com/rs/zerolog"
)

// Installer downloads a release archive and installs it into the registry
type Installer struct {
	urlTemplate  string
	downloadsDir string
	registry     Registry
	client       *http.Client
	logger       zerolog.Logger
}

// InstallerOption customizes an Installer
type InstallerOption func(*Installer)

// WithHTTPClient replaces the download client
func WithHTTPClient(c *http.Client) InstallerOption {
	return func(i *Installer) { i.client = c }
}

// NewInstaller creates an Installer caching archives in downloadsDir
func NewInstaller(cfg config.Extension, reg Registry, downloadsDir string, opts ...InstallerOption) *Installer {
	i := &Installer{
		urlTemplate:  cfg.DownloadURL,
		downloadsDir: downloadsDir,
		registry:     reg,
		client:       &http.Client{Timeout: cfg.DownloadTimeout},
		logger:       logging.GetLogger("extension.installer"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ArchiveURL expands the {id} and {tag} placeholders
func (i *Installer) ArchiveURL(id, tag string) string {
	return strings.NewReplacer("{id}", id, "{tag}", tag).Replace(i.urlTemplate)
}

// ArchivePath is where the archive for id and tag is cached
func (i *Installer) ArchivePath(id, tag string) string {
	return filepath.Join(i.downloadsDir, fmt.Sprintf("%s_%s.zip", id, tag))
}

// Install fetches the archive (reusing a cached copy) and installs it. It
// returns the archive path.
func (i *Installer) Install(ctx context.Context, id, tag string) (string, error) {
	archive, err := i.Download(ctx, id, tag)
	if err != nil {
		return "", err
	}

	if err := i.registry.Install(ctx, archive); err != nil {
		return archive, errors.Wrapf(err, errors.ErrCommand, "failed to install %s", filepath.Base(archive)).
			WithDetail("archive", archive)
	}

	i.logger.Info().Str("extension", id).Str("tag", tag).Msg("Extension installed")
	return archive, nil
}

// Download stores the release archive in the cache and returns its path
func (i *Installer) Download(ctx context.Context, id, tag string) (string, error) {
	path := i.ArchivePath(id, tag)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		i.logger.Debug().Str("path", path).Msg("Using cached archive")
		return path, nil
	}

	if err := os.MkdirAll(i.downloadsDir, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrFileCreate, "failed to create downloads directory").
			WithDetail("path", i.downloadsDir)
	}

	url := i.ArchiveURL(id, tag)
	i.logger.Debug().Str("url", url).Msg("Downloading archive")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDownload, "invalid download URL").WithDetail("url", url)
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDownload, "download failed").WithDetail("url", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrDownload, "download returned %s", resp.Status).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(i.downloadsDir, ".download-*")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileCreate, "failed to create temporary file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", errors.Wrap(err, errors.ErrDownload, "failed to save archive").WithDetail("url", url)
	}
	if n == 0 {
		return "", errors.New(errors.ErrDownload, "downloaded archive is empty").WithDetail("url", url)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, errors.ErrFileCreate, "failed to store archive").WithDetail("path", path)
	}

	i.logger.Debug().Str("path", path).Int64("bytes", n).Msg("Archive downloaded")
	return path, nil
}
