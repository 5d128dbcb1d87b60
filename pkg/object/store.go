package object

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/golang/groupcache/lru"
	"github.com/rs/zerolog/log"
)

// objectsDir is the directory, relative to the store root, holding one file
// per object named by its hex hash.
const objectsDir = "objects"

// DefaultCacheSize is the number of decoded objects kept in memory by a
// Store unless WithCacheSize says otherwise.
const DefaultCacheSize = 256

// Store is a content-addressed, write-once object store with a flat layout:
// objects/<40-hex>. Blobs and trees share the namespace.
type Store struct {
	fs          billy.Filesystem
	compression Compression

	mu    sync.Mutex
	cache *lru.Cache
}

// Option configures a Store.
type Option func(*Store)

// WithCompression sets the on-disk encoding for newly written objects.
func WithCompression(c Compression) Option {
	return func(s *Store) {
		s.compression = c
	}
}

// WithCacheSize bounds the read cache. Zero disables it.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		if n <= 0 {
			s.cache = nil
			return
		}
		s.cache = lru.New(n)
	}
}

// NewStore creates a Store rooted at fs. The objects/ subdirectory is
// created lazily on first write.
func NewStore(fs billy.Filesystem, opts ...Option) *Store {
	s := &Store{
		fs:          fs,
		compression: CompressionNone,
		cache:       lru.New(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return s.fs.Join(objectsDir, string(h))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !h.Valid() {
		return false
	}
	info, err := s.fs.Stat(s.objectPath(h))
	return err == nil && !info.IsDir()
}

// Put stores data and returns its content hash. An existing object under
// the same hash is never rewritten. Writes are atomic: data is written to a
// temp file and then renamed into place.
func (s *Store) Put(data []byte) (Hash, error) {
	h := HashBytes(data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	raw := data
	if s.compression == CompressionZstd {
		enc, err := compressZstd(data)
		if err != nil {
			return "", fmt.Errorf("object put %s: compress: %w", h, err)
		}
		raw = enc
	}

	if err := s.fs.MkdirAll(objectsDir, 0o755); err != nil {
		return "", fmt.Errorf("object put mkdir: %w", err)
	}

	tmp, err := s.fs.TempFile(objectsDir, ".tmp-")
	if err != nil {
		return "", fmt.Errorf("object put tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("object put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("object put close: %w", err)
	}

	if err := s.fs.Rename(tmpName, s.objectPath(h)); err != nil {
		s.fs.Remove(tmpName)
		// A concurrent writer of the same bytes may have won the rename.
		if s.Has(h) {
			return h, nil
		}
		return "", fmt.Errorf("object put rename: %w", err)
	}

	log.Trace().Str("hash", string(h)).Int("size", len(data)).Msg("object stored")
	return h, nil
}

// Get retrieves the decoded bytes of the object stored under h.
func (s *Store) Get(h Hash) ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("object get %q: %w", h, ErrInvalidHash)
	}
	if data, ok := s.cached(h); ok {
		return data, nil
	}

	data, err := s.load(h)
	if err != nil {
		return nil, err
	}
	s.remember(h, data)
	return clone(data), nil
}

// load reads and decodes h from disk, bypassing the cache.
func (s *Store) load(h Hash) ([]byte, error) {
	raw, err := s.readRaw(h)
	if err != nil {
		return nil, err
	}
	if isZstdFrame(raw) {
		// A raw blob may itself be a zstd stream; only trust the decoded
		// form when it hashes to the object's name.
		if dec, err := decompressZstd(raw); err == nil && HashBytes(dec) == h {
			return dec, nil
		}
	}
	return raw, nil
}

func (s *Store) readRaw(h Hash) ([]byte, error) {
	f, err := s.fs.Open(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object get %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object get %s: %w", h, err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("object get %s: %w", h, err)
	}
	return raw, nil
}

func (s *Store) cached(h Hash) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(h)
	if !ok {
		return nil, false
	}
	return clone(v.([]byte)), true
}

func (s *Store) remember(h Hash, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil {
		s.cache.Add(h, clone(data))
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Objects lists the hashes of every stored object in ascending order.
// Temp files and foreign names are skipped.
func (s *Store) Objects() ([]Hash, error) {
	infos, err := s.fs.ReadDir(objectsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var out []Hash
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		h := Hash(info.Name())
		if h.Valid() {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// PutTree serializes and stores a tree's entry list.
func (s *Store) PutTree(entries []TreeEntry) (Hash, error) {
	return s.Put(MarshalTree(entries))
}

// GetTree reads and parses a tree object.
func (s *Store) GetTree(h Hash) ([]TreeEntry, error) {
	data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	entries, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Verification
// ---------------------------------------------------------------------------

// VerifyReport summarizes a full scan of the store.
type VerifyReport struct {
	Objects int
	Trees   int
	Blobs   int
	Corrupt []*VerifyError
}

// Verify re-reads every object and checks that its bytes hash to its name.
// Mismatches are collected in the report; I/O failures abort the scan.
func (s *Store) Verify() (*VerifyReport, error) {
	hashes, err := s.Objects()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	report := &VerifyReport{}
	for _, h := range hashes {
		data, err := s.load(h)
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		report.Objects++
		if actual := HashBytes(data); actual != h {
			report.Corrupt = append(report.Corrupt, &VerifyError{Hash: h, Actual: actual})
			continue
		}
		if Classify(data) == KindTree {
			report.Trees++
		} else {
			report.Blobs++
		}
	}
	return report, nil
}
