// Package filesystem spools signed request descriptors to a directory so they
// can be executed later by another process. Writes are atomic: a descriptor
// is written to a temp file and renamed into place.
//
// Descriptors are stored at <host>/<object key>, mirroring the object URL, so
// a spool directory reads like the bucket layout it will produce.
package filesystem

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// ErrNotFound is returned when no descriptor exists at a path.
var ErrNotFound = errors.New("descriptor not found")

// WriteResult describes a spooled descriptor.
type WriteResult struct {
	Path         string
	BytesWritten int64
	// Digest is the hex SHA-256 of the file contents.
	Digest string
}

// Entry is one spooled descriptor found by List.
type Entry struct {
	Path   string
	Size   int64
	Digest string
}

// Store provides spool operations rooted at a directory.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// PathFor returns the spool path of req: the URL host followed by the
// unescaped object path.
func PathFor(req s3component.Request) (string, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return "", fmt.Errorf("parse request url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("request url %q has no host: %w", req.URL, s3component.ErrInvalidInput)
	}

	key := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if key == "" {
		return "", fmt.Errorf("request url %q has no object key: %w", req.URL, s3component.ErrInvalidInput)
	}
	return filepath.Join(u.Host, filepath.FromSlash(key)), nil
}

// Get reads the descriptor stored at name.
func (s *Store) Get(ctx context.Context, name string) (s3component.Request, error) {
	if err := ctx.Err(); err != nil {
		return s3component.Request{}, err
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s3component.Request{}, ErrNotFound
		}
		return s3component.Request{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var req s3component.Request
	if err := json.NewDecoder(&ctxReader{ctx: ctx, r: f}).Decode(&req); err != nil {
		return s3component.Request{}, fmt.Errorf("decode descriptor %s: %w", name, err)
	}
	return req, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically spools req at PathFor(req) using a temp file and rename.
// Intermediate directories are created as needed. An existing descriptor at
// the same path is replaced.
func (s *Store) Write(ctx context.Context, req s3component.Request) (WriteResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return WriteResult{}, ctxErr
	}

	dest, err := PathFor(req)
	if err != nil {
		return WriteResult{}, err
	}

	content, err := json.Marshal(req)
	if err != nil {
		return WriteResult{}, fmt.Errorf("encode descriptor: %w", err)
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return WriteResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	n, err := io.Copy(w, &ctxReader{ctx: ctx, r: bytes.NewReader(content)})
	if err != nil {
		return WriteResult{}, fmt.Errorf("could not write descriptor: %w", err)
	}

	if err := t.Sync(); err != nil {
		return WriteResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := s.root.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return WriteResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return WriteResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true

	return WriteResult{Path: dest, BytesWritten: n, Digest: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes a spooled descriptor, typically after it has been executed.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List recursively walks the spool and returns every descriptor in lexical
// order, which for generated keys is also time order within a prefix.
// Temp files from interrupted writes are skipped.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []Entry

	if err := s.walkDir(ctx, ".", &entries); err != nil {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}

	return entries, nil
}

func (s *Store) walkDir(ctx context.Context, dir string, entries *[]Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryPath := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := s.walkDir(ctx, entryPath, entries); err != nil {
				return err
			}
			continue
		}
		if isTmpFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		f, err := s.root.Open(entryPath)
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		h := sha256.New()
		_, copyErr := io.Copy(h, f)

		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", entryPath, "err", closeErr)
		}

		if copyErr != nil {
			return fmt.Errorf("walk dir: %w", copyErr)
		}

		*entries = append(*entries, Entry{
			Path:   entryPath,
			Size:   info.Size(),
			Digest: hex.EncodeToString(h.Sum(nil)),
		})
	}

	return nil
}

const tmpPrefix = ".t"

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}

func isTmpFile(name string) bool {
	return strings.HasPrefix(name, tmpPrefix)
}
