package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// FetchedSource is a git source checked out into the local cache.
type FetchedSource struct {
	Name     string
	Version  string
	Commit   string
	Dir      string
	File     string
	Checksum string
}

// GitFetcher clones git sources into <home>/src/<name>/<version>.
type GitFetcher struct {
	cacheDir string
}

// NewGitFetcher returns a fetcher rooted at home, or nil when home is empty.
func NewGitFetcher(home string) *GitFetcher {
	if home == "" {
		return nil
	}
	return &GitFetcher{cacheDir: filepath.Join(home, "src")}
}

// Fetch makes sure the pinned revision of src is checked out and its program
// file matches the manifest checksum.
func (g *GitFetcher) Fetch(src *SourceSpec) (*FetchedSource, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(src.Git)
	if url == "" {
		return nil, fmt.Errorf("source %q: git URL required", src.Name)
	}

	baseDir := filepath.Join(g.cacheDir, sanitizePathSegment(src.Name))
	version, commit, err := g.checkout(baseDir, url, src)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", src.Name, err)
	}

	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	file := filepath.Join(checkoutDir, filepath.FromSlash(src.Path))
	checksum, err := VerifyChecksum(file, src.Checksum)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", src.Name, err)
	}
	log.Infof("fetched %s %s (%s)", src.Name, version, commit)

	return &FetchedSource{
		Name:     src.Name,
		Version:  version,
		Commit:   commit,
		Dir:      checkoutDir,
		File:     file,
		Checksum: checksum,
	}, nil
}

// checkout returns the cache directory name and commit for src, cloning
// into baseDir when no usable checkout exists yet.
func (g *GitFetcher) checkout(baseDir, url string, src *SourceSpec) (version, commit string, err error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	revision, descriptor, err := gitRevisionFromSpec(src)
	if err != nil {
		return "", "", err
	}

	// A pinned rev never moves, so an existing checkout is reused as is.
	if rev := strings.TrimSpace(src.Rev); rev != "" && dirExists(filepath.Join(baseDir, sanitizePathSegment(rev))) {
		log.LogVf("reusing cached checkout of %s at %s", src.Name, rev)
		return rev, rev, nil
	}

	staging, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	// PlainClone creates the directory itself.
	if err := os.Remove(staging); err != nil {
		return "", "", err
	}
	keep := false
	defer func() {
		if !keep {
			_ = os.RemoveAll(staging)
		}
	}()

	repo, err := git.PlainClone(staging, false, &git.CloneOptions{URL: url})
	if err != nil {
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", revision, err)
	}
	commit = hash.String()

	version = descriptor
	if src.Rev == "" {
		version = descriptor + "@" + commit
	}
	dest := filepath.Join(baseDir, sanitizePathSegment(version))
	if dirExists(dest) {
		return version, commit, nil
	}

	tree, err := repo.Worktree()
	if err != nil {
		return "", "", err
	}
	if err := tree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", "", fmt.Errorf("checkout %s: %w", revision, err)
	}
	if err := os.Rename(staging, dest); err != nil {
		return "", "", err
	}
	keep = true
	return version, commit, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func gitRevisionFromSpec(src *SourceSpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(src.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(src.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(src.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git sources require rev, tag, or branch")
}

// sanitizePathSegment maps a name or ref onto a single safe directory name.
func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, segment)
}
