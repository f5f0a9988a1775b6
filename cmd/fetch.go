package main

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/fetcher"
)

var fetchKeepArchives bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <file-or-url> [more...]",
	Short: "Download campaign exports into the data directory",
	Long:  "Fetches agency-delivered SEO and PPC exports. Bare names are resolved against the configured FTP drop; full ftp://, http:// or https:// URLs are fetched as given. ZIP archives are extracted into the data directory.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Full URLs carry their own target; only bare names need the
		// configured drop.
		for _, arg := range args {
			if !strings.Contains(arg, "://") {
				if err := cfg.Validate("fetch"); err != nil {
					return err
				}
				break
			}
		}

		if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
			return eris.Wrapf(err, "create data dir %s", cfg.Data.Dir)
		}

		for _, arg := range args {
			if err := fetchOne(ctx, arg); err != nil {
				return err
			}
		}
		return nil
	},
}

func fetchOne(ctx context.Context, arg string) error {
	log := zap.L().With(zap.String("component", "cmd"))

	target, err := resolveFetchURL(arg)
	if err != nil {
		return err
	}
	dest := filepath.Join(cfg.Data.Dir, destName(target))

	start := time.Now()
	n, err := newFetcher(target).DownloadToFile(ctx, target, dest)
	if err != nil {
		return eris.Wrapf(err, "fetch %s", arg)
	}
	log.Info("export downloaded",
		zap.String("url", target),
		zap.String("dest", dest),
		zap.Int64("bytes", n),
		zap.Duration("took", time.Since(start)),
	)

	if !strings.EqualFold(filepath.Ext(dest), ".zip") {
		return nil
	}
	names, err := fetcher.ExtractZIP(dest, cfg.Data.Dir)
	if err != nil {
		return eris.Wrapf(err, "extract %s", dest)
	}
	log.Info("archive extracted", zap.String("zip", dest), zap.Strings("files", names))
	if !fetchKeepArchives {
		if err := os.Remove(dest); err != nil {
			log.Warn("archive cleanup failed", zap.String("zip", dest), zap.Error(err))
		}
	}
	return nil
}

// destName picks the local file name from the URL path.
func destName(target string) string {
	if u, err := url.Parse(target); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(target)
}

// resolveFetchURL turns a bare file name into a URL under the configured
// FTP drop. Anything already carrying a scheme passes through.
func resolveFetchURL(arg string) (string, error) {
	if strings.Contains(arg, "://") {
		return arg, nil
	}
	if cfg.FTP.URL == "" {
		return "", eris.Errorf("bare name %q needs ftp.url configured (ATTRIB_FTP_URL)", arg)
	}
	return strings.TrimRight(cfg.FTP.URL, "/") + "/" + arg, nil
}

// newFetcher picks the transport matching the URL scheme. Unknown schemes
// fall through to the FTP client, which rejects them with a clear error.
func newFetcher(target string) fetcher.Fetcher {
	u, err := url.Parse(target)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: cfg.FTP.Timeout()})
	}
	return fetcher.NewFTPFetcher(fetcher.FTPOptions{
		User:     cfg.FTP.User,
		Password: cfg.FTP.Password,
		Timeout:  cfg.FTP.Timeout(),
	})
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchKeepArchives, "keep-archives", false, "keep downloaded ZIP files after extraction")
	rootCmd.AddCommand(fetchCmd)
}
