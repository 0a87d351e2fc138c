package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const emptyBlake3 = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"

func commit(t *testing.T, repo *git.Repository, message string, paths ...string) plumbing.Hash {
	t.Helper()
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	for _, path := range paths {
		if _, err := worktree.Add(path); err != nil {
			t.Fatalf("stage %s: %v", path, err)
		}
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Whily CLI",
			Email: "whily@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash
}

// initGitRepo creates a repository with two commits of add.while and tags
// the first one v1.
func initGitRepo(t *testing.T, dir string) (*git.Repository, plumbing.Hash, plumbing.Hash) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	writeFile(t, filepath.Join(dir, "progs", "add.while"), "x1 := 1")
	first := commit(t, repo, "first", "progs/add.while")
	if _, err := repo.CreateTag("v1", first, nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	writeFile(t, filepath.Join(dir, "progs", "add.while"), "x1 := 2")
	second := commit(t, repo, "second", "progs/add.while")
	return repo, first, second
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestChecksum(t *testing.T) {
	if got := Checksum(nil); got != emptyBlake3 {
		t.Fatalf("Checksum(empty) = %s, want %s", got, emptyBlake3)
	}
	if Checksum([]byte("x1 := 1")) == Checksum([]byte("x1 := 2")) {
		t.Fatalf("different inputs share a checksum")
	}
}

func TestVerifyChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.while")
	writeFile(t, path, "")
	if _, err := VerifyChecksum(path, emptyBlake3); err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	got, err := VerifyChecksum(path, "")
	if err != nil || got != emptyBlake3 {
		t.Fatalf("VerifyChecksum(no pin) = %s, %v", got, err)
	}
	if _, err := VerifyChecksum(path, Checksum([]byte("other"))); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("error = %v, want ErrChecksumMismatch", err)
	}
}

func TestGitFetcherByTag(t *testing.T) {
	remote := t.TempDir()
	_, first, _ := initGitRepo(t, remote)

	fetcher := NewGitFetcher(t.TempDir())
	fetched, err := fetcher.Fetch(&SourceSpec{
		Name:     "lib",
		Git:      remote,
		Tag:      "v1",
		Path:     "progs/add.while",
		Checksum: Checksum([]byte("x1 := 1")),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if fetched.Commit != first.String() {
		t.Fatalf("Commit = %s, want %s", fetched.Commit, first)
	}
	if fetched.Version != "v1@"+first.String() {
		t.Fatalf("Version = %s", fetched.Version)
	}
	if got := readString(t, fetched.File); got != "x1 := 1" {
		t.Fatalf("checked out %q, want tagged content", got)
	}
}

func TestGitFetcherByRevReusesCheckout(t *testing.T) {
	remote := t.TempDir()
	_, _, second := initGitRepo(t, remote)
	home := t.TempDir()
	fetcher := NewGitFetcher(home)
	src := &SourceSpec{Name: "lib", Git: remote, Rev: second.String(), Path: "progs/add.while"}

	fetched, err := fetcher.Fetch(src)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := readString(t, fetched.File); got != "x1 := 2" {
		t.Fatalf("checked out %q, want latest content", got)
	}
	if want := filepath.Join(home, "src", "lib", second.String()); fetched.Dir != want {
		t.Fatalf("Dir = %s, want %s", fetched.Dir, want)
	}

	// The remote disappearing must not matter once the rev is cached.
	if err := os.RemoveAll(remote); err != nil {
		t.Fatalf("remove remote: %v", err)
	}
	again, err := fetcher.Fetch(src)
	if err != nil {
		t.Fatalf("cached Fetch: %v", err)
	}
	if again.Dir != fetched.Dir || again.Checksum != fetched.Checksum {
		t.Fatalf("cached fetch = %+v, want %+v", again, fetched)
	}
}

func TestGitFetcherChecksumMismatch(t *testing.T) {
	remote := t.TempDir()
	initGitRepo(t, remote)
	fetcher := NewGitFetcher(t.TempDir())
	_, err := fetcher.Fetch(&SourceSpec{
		Name:     "lib",
		Git:      remote,
		Branch:   "master",
		Path:     "progs/add.while",
		Checksum: Checksum([]byte("x1 := 1")),
	})
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("error = %v, want ErrChecksumMismatch", err)
	}
}

func TestGitFetcherUnknownTag(t *testing.T) {
	remote := t.TempDir()
	initGitRepo(t, remote)
	fetcher := NewGitFetcher(t.TempDir())
	if _, err := fetcher.Fetch(&SourceSpec{Name: "lib", Git: remote, Tag: "v9", Path: "progs/add.while"}); err == nil {
		t.Fatalf("expected unknown tag to fail")
	}
}

func TestNilGitFetcher(t *testing.T) {
	fetcher := NewGitFetcher("")
	if _, err := fetcher.Fetch(&SourceSpec{Name: "lib"}); err == nil {
		t.Fatalf("expected nil fetcher to fail")
	}
}
