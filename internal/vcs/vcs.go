// Package vcs checks versions of a project out of its git repository and orders
// them chronologically.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrDirtyWorkingDir is returned when the working directory has uncommitted changes.
var ErrDirtyWorkingDir = errors.New("working directory has uncommitted changes")

// ErrUnknownVersion is returned when a version names no tag, branch or commit.
var ErrUnknownVersion = errors.New("unknown version")

// CommitInfo is a resolved version.
type CommitInfo struct {
	Ref  string
	SHA  string
	Date time.Time
}

// Repo is a git working tree whose checked-out version changes per run.
type Repo struct {
	path string
	repo *git.Repository
}

// Open opens the repository at path, detecting .git in parent directories.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	return &Repo{path: wt.Filesystem.Root(), repo: repo}, nil
}

// Path returns the working tree root.
func (r *Repo) Path() string {
	return r.path
}

// IsDirty returns true if there are uncommitted changes in the working directory.
// Untracked files are not considered dirty.
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	for _, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

// CurrentRef returns the current branch name or commit SHA (for detached HEAD).
func (r *Repo) CurrentRef() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", err
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String(), nil
}

// Resolve finds the commit a version names. Tags are tried first, then branches,
// then any revision git understands.
func (r *Repo) Resolve(version string) (CommitInfo, error) {
	hash, err := r.resolveHash(version)
	if err != nil {
		return CommitInfo{}, err
	}
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}
	return CommitInfo{Ref: version, SHA: c.Hash.String(), Date: commitDate(c)}, nil
}

func (r *Repo) resolveHash(version string) (plumbing.Hash, error) {
	if ref, err := r.repo.Tag(version); err == nil {
		// Annotated tags point at a tag object.
		if tag, err := r.repo.TagObject(ref.Hash()); err == nil {
			c, err := tag.Commit()
			if err != nil {
				return plumbing.ZeroHash, err
			}
			return c.Hash, nil
		}
		return ref.Hash(), nil
	}
	if ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(version), true); err == nil {
		return ref.Hash(), nil
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(version))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}
	return *hash, nil
}

func commitDate(c *object.Commit) time.Time {
	if !c.Committer.When.IsZero() {
		return c.Committer.When
	}
	return c.Author.When
}

// Checkout forces the working tree to the given version and returns its root. Local
// modifications to tracked files are refused.
func (r *Repo) Checkout(ctx context.Context, version string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dirty, err := r.IsDirty()
	if err != nil {
		return "", err
	}
	if dirty {
		return "", ErrDirtyWorkingDir
	}
	info, err := r.Resolve(version)
	if err != nil {
		return "", err
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(info.SHA), Force: true}); err != nil {
		return "", fmt.Errorf("failed to checkout %s: %w", version, err)
	}
	return r.path, nil
}

// Restore checks out a branch or commit recorded with CurrentRef.
func (r *Repo) Restore(ref string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}
	branch := plumbing.NewBranchReferenceName(ref)
	if _, err := r.repo.Reference(branch, true); err == nil {
		return wt.Checkout(&git.CheckoutOptions{Branch: branch, Force: true})
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
}

// OrderByDate resolves every version and sorts them oldest first by commit date.
// Versions with equal dates keep their given order.
func (r *Repo) OrderByDate(versions []string) ([]CommitInfo, error) {
	out := make([]CommitInfo, 0, len(versions))
	for _, v := range versions {
		info, err := r.Resolve(v)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Refs returns the refs of infos in order.
func Refs(infos []CommitInfo) []string {
	out := make([]string, len(infos))
	for i, c := range infos {
		out[i] = c.Ref
	}
	return out
}
