package repo

import (
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/odvcencio/twig/pkg/index"
	"github.com/odvcencio/twig/pkg/object"
)

// DirName is the metadata directory at the root of every working tree.
const DirName = ".twig"

const (
	indexFile  = "index"
	headFile   = "HEAD"
	configFile = "config.toml"
)

// Repo represents an opened twig repository. Paths are explicit: nothing
// below depends on the process working directory.
type Repo struct {
	RootDir  string           // working directory root
	TwigDir  string           // .twig/ directory
	Worktree billy.Filesystem // rooted at RootDir
	Store    *object.Store    // content-addressed object store
	Index    *index.Index     // staging index
	Config   *Config

	fs  billy.Filesystem // rooted at TwigDir
	now func() time.Time
}

func newRepo(rootDir string, worktree billy.Filesystem) (*Repo, error) {
	fs, err := worktree.Chroot(DirName)
	if err != nil {
		return nil, err
	}
	r := &Repo{
		RootDir:  rootDir,
		TwigDir:  filepath.Join(rootDir, DirName),
		Worktree: worktree,
		Index:    index.New(fs, indexFile),
		fs:       fs,
		now:      time.Now,
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	if err := r.applyConfig(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// applyConfig (re)creates the object store with the settings in cfg.
func (r *Repo) applyConfig(cfg *Config) error {
	compression, err := cfg.compression()
	if err != nil {
		return err
	}
	r.Config = cfg
	r.Store = object.NewStore(r.fs,
		object.WithCompression(compression),
		object.WithCacheSize(cfg.Core.CacheSize),
	)
	return nil
}
