package fetch

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/damillora/cyrene/internal/fsutil"
)

// ArchiveKind is the closed set of artifact formats a plugin can fetch.
type ArchiveKind int

const (
	TarGz ArchiveKind = iota
	TarXz
	Zip
	File
)

func (k ArchiveKind) String() string {
	switch k {
	case TarGz:
		return "tar.gz"
	case TarXz:
		return "tar.xz"
	case Zip:
		return "zip"
	case File:
		return "file"
	}
	return fmt.Sprintf("ArchiveKind(%d)", int(k))
}

// Unpack downloads url and unpacks it according to kind. For archive kinds
// dest is a directory. For File it is the path of the downloaded file.
func (c *Client) Unpack(ctx context.Context, kind ArchiveKind, url, dest string) error {
	var err error
	switch kind {
	case TarGz:
		err = c.streamTar(ctx, url, dest, func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	case TarXz:
		err = c.streamTar(ctx, url, dest, func(r io.Reader) (io.Reader, error) {
			return xz.NewReader(r)
		})
	case Zip:
		err = c.unpackZip(ctx, url, dest)
	case File:
		err = c.saveFile(ctx, url, dest)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownArchive, int(kind))
	}
	if err == nil {
		return nil
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{URL: url, Err: err}
}

func (c *Client) streamTar(ctx context.Context, url, dest string, decompress func(io.Reader) (io.Reader, error)) error {
	body, err := c.download(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	dr, err := decompress(body)
	if err != nil {
		return fmt.Errorf("open decompressor: %w", err)
	}
	return extractTar(dr, dest)
}

func (c *Client) unpackZip(ctx context.Context, url, dest string) error {
	tmp, err := os.CreateTemp("", "cyrene-*.zip")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	body, err := c.download(ctx, url)
	if err != nil {
		return err
	}
	size, err := io.Copy(tmp, body)
	body.Close()
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	zr, err := zip.NewReader(tmp, size)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	return extractZip(zr, dest)
}

func (c *Client) saveFile(ctx context.Context, url, dest string) error {
	body, err := c.download(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	return fsutil.WriteAtomic(dest, body, 0o644)
}

func within(root, p string) bool {
	root = filepath.Clean(root)
	return p == root || strings.HasPrefix(p, root+string(os.PathSeparator))
}

// safeTarget resolves name under dest. Names that climb out of dest are
// rejected. Symlinks extracted earlier are followed and kept inside dest.
func safeTarget(dest, name string) (string, error) {
	if !within(dest, filepath.Join(dest, name)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target, err := securejoin.SecureJoin(dest, name)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	return target, nil
}

// linkTarget resolves where a symlink entry itself is created. Unlike
// safeTarget the last component is not followed.
func linkTarget(dest, name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(os.PathSeparator) {
		return "", fmt.Errorf("%w: link %s", ErrUnsafePath, name)
	}
	dir, err := safeTarget(dest, filepath.Dir(name))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, base), nil
}

// maxLinkHops bounds symlink expansion in linkEscapes.
const maxLinkHops = 255

// linkEscapes reports whether a symlink at target pointing to linkname
// would lead outside dest when the kernel follows it. Symlinks already
// extracted under dest are expanded before any ".." is applied.
func linkEscapes(dest, target, linkname string) bool {
	if filepath.IsAbs(linkname) {
		return true
	}
	rel, err := filepath.Rel(dest, filepath.Dir(target))
	if err != nil || !filepath.IsLocal(rel) {
		return true
	}

	var stack []string
	if rel != "." {
		stack = strings.Split(rel, string(os.PathSeparator))
	}
	remaining := strings.Split(filepath.ToSlash(linkname), "/")
	for hops := 0; len(remaining) > 0; {
		part := remaining[0]
		remaining = remaining[1:]

		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return true
			}
			stack = stack[:len(stack)-1]
			continue
		}

		p := filepath.Join(dest, filepath.Join(stack...), part)
		fi, err := os.Lstat(p)
		if err != nil || fi.Mode()&os.ModeSymlink == 0 {
			stack = append(stack, part)
			continue
		}

		hops++
		next, err := os.Readlink(p)
		if err != nil || hops > maxLinkHops || filepath.IsAbs(next) {
			return true
		}
		remaining = append(strings.Split(filepath.ToSlash(next), "/"), remaining...)
	}
	return false
}

func extractTar(r io.Reader, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			target, err := safeTarget(dest, header.Name)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			target, err := safeTarget(dest, header.Name)
			if err != nil {
				return err
			}
			if err := writeEntry(target, tr, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			target, err := linkTarget(dest, header.Name)
			if err != nil {
				return err
			}
			if linkEscapes(dest, target, header.Linkname) {
				return fmt.Errorf("%w: link %s -> %s", ErrUnsafePath, header.Name, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}
		default:
			// Devices, fifos and hard links are not needed by release archives.
			continue
		}
	}
}

func extractZip(zr *zip.Reader, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	for _, f := range zr.File {
		target, err := safeTarget(dest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", f.Name, err)
		}
		err = writeEntry(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	return out.Close()
}

// SetExecutable sets mode 0755 on path.
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
