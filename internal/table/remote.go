package table

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Downloader fetches a URL into a local file. *fetcher.HTTPFetcher satisfies it.
type Downloader interface {
	DownloadToFile(ctx context.Context, url, path string) (int64, error)
}

// IsRemote reports whether p is an http or https URL.
func IsRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// remoteName returns the file name to store a download under, taken from the
// URL path so the extension still identifies the source kind.
func remoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}

// fetchRemote downloads src into a fresh temp directory and returns the
// equivalent local source. The caller must invoke cleanup when done.
func fetchRemote(ctx context.Context, src Source, opts Options) (Source, func(), error) {
	noop := func() {}
	if opts.Downloader == nil {
		return src, noop, eris.New("table: remote source requires a downloader")
	}

	dir, err := os.MkdirTemp(opts.TempDir, "geo-profiler-remote-*")
	if err != nil {
		return src, noop, eris.Wrap(err, "table: remote: create temp dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	local := filepath.Join(dir, remoteName(src.Path))
	if _, err := opts.Downloader.DownloadToFile(ctx, src.Path, local); err != nil {
		cleanup()
		return src, noop, eris.Wrapf(err, "table: remote: fetch %s", src.Path)
	}

	if src.Kind == "" {
		src.Kind = DetectKind(local)
	}
	src.Path = local
	return src, cleanup, nil
}
