package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the FTP fetcher. User and Password apply when the
// URL carries no userinfo; both empty means anonymous login.
type FTPOptions struct {
	User     string
	Password string
	Timeout  time.Duration
}

// FTPFetcher downloads files from an FTP export drop.
type FTPFetcher struct {
	opts FTPOptions
}

// NewFTPFetcher creates a new FTPFetcher with the given options.
func NewFTPFetcher(opts FTPOptions) *FTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &FTPFetcher{opts: opts}
}

// ftpTarget is a parsed FTP URL plus the credentials to log in with.
type ftpTarget struct {
	host string
	path string
	user string
	pass string
}

// parseFTPURL extracts host (with port), path, and credentials from an FTP
// URL. Userinfo in the URL wins over the configured credentials.
func parseFTPURL(rawURL string, opts FTPOptions) (ftpTarget, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ftpTarget{}, eris.Wrap(err, "parse ftp url")
	}
	if u.Scheme != "ftp" {
		return ftpTarget{}, eris.Errorf("expected ftp scheme, got %q", u.Scheme)
	}

	host := u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	if u.Path == "" {
		return ftpTarget{}, eris.New("empty path in ftp url")
	}

	tgt := ftpTarget{host: host, path: u.Path, user: "anonymous", pass: "anonymous@"}
	if opts.User != "" {
		tgt.user, tgt.pass = opts.User, opts.Password
	}
	if u.User != nil {
		tgt.user = u.User.Username()
		tgt.pass, _ = u.User.Password()
	}

	return tgt, nil
}

func (f *FTPFetcher) connect(ctx context.Context, tgt ftpTarget) (*ftp.ServerConn, error) {
	zap.L().Debug("ftp: connecting", zap.String("host", tgt.host), zap.String("path", tgt.path))

	conn, err := ftp.Dial(tgt.host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp dial")
	}

	if err := conn.Login(tgt.user, tgt.pass); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ftp login")
	}

	return conn, nil
}

// ftpConnReader wraps an FTP response and connection so that closing the reader
// also closes the FTP response and disconnects from the server.
type ftpConnReader struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpConnReader) Read(p []byte) (int, error) {
	return r.resp.Read(p)
}

func (r *ftpConnReader) Close() error {
	respErr := r.resp.Close()
	quitErr := r.conn.Quit()
	if respErr != nil {
		return eris.Wrap(respErr, "close ftp response")
	}
	if quitErr != nil {
		return eris.Wrap(quitErr, "quit ftp connection")
	}
	return nil
}

// Download connects to the FTP server, retrieves the file, and returns a reader.
// The caller must close the returned ReadCloser to release the FTP connection.
func (f *FTPFetcher) Download(ctx context.Context, ftpURL string) (io.ReadCloser, error) {
	tgt, err := parseFTPURL(ftpURL, f.opts)
	if err != nil {
		return nil, err
	}

	conn, err := f.connect(ctx, tgt)
	if err != nil {
		return nil, err
	}

	resp, err := conn.Retr(tgt.path)
	if err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ftp retrieve")
	}

	return &ftpConnReader{resp: resp, conn: conn}, nil
}

// DownloadToFile downloads the FTP URL to a local file, replacing the
// destination only when the transfer completes. Returns bytes written.
func (f *FTPFetcher) DownloadToFile(ctx context.Context, ftpURL string, path string) (int64, error) {
	start := time.Now()

	rc, err := f.Download(ctx, ftpURL)
	if err != nil {
		return 0, err
	}
	defer rc.Close() //nolint:errcheck

	n, err := writeAtomic(path, rc)
	if err != nil {
		return n, err
	}

	zap.L().Info("fetched export",
		zap.String("url", ftpURL),
		zap.String("dest", path),
		zap.Int64("bytes", n),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}

// List returns the file names in the directory named by the URL, skipping
// subdirectories.
func (f *FTPFetcher) List(ctx context.Context, dirURL string) ([]string, error) {
	tgt, err := parseFTPURL(dirURL, f.opts)
	if err != nil {
		return nil, err
	}

	conn, err := f.connect(ctx, tgt)
	if err != nil {
		return nil, err
	}
	defer conn.Quit() //nolint:errcheck

	entries, err := conn.List(tgt.path)
	if err != nil {
		return nil, eris.Wrap(err, "ftp list")
	}

	var names []string
	for _, e := range entries {
		if e.Type == ftp.EntryTypeFile {
			names = append(names, e.Name)
		}
	}
	return names, nil
}
