// Package revision reads the git revision of the application directory so a
// snapshot can record which code it was taken against.
package revision

import (
	"errors"

	"github.com/go-git/go-git/v5"

	ferrors "git.home.luguber.info/inful/backupstate/internal/foundation/errors"
)

// Info describes the checked-out revision.
type Info struct {
	Commit string
	Branch string // empty on a detached HEAD
	Dirty  bool
}

// Detect opens the repository containing dir and reads HEAD.
func Detect(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return Info{}, ferrors.NotFoundError("git repository").WithContext("dir", dir).Build()
	}
	if err != nil {
		return Info{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open repository").
			WithContext("dir", dir).
			Build()
	}

	head, err := repo.Head()
	if err != nil {
		return Info{}, ferrors.WrapError(err, ferrors.CategoryNotFound, "failed to resolve HEAD").
			WithContext("dir", dir).
			Build()
	}

	info := Info{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}
	return info, nil
}

// Apply stamps the revision into a snapshot info payload.
func (i Info) Apply(backupInfo map[string]any) map[string]any {
	if backupInfo == nil {
		backupInfo = map[string]any{}
	}
	backupInfo["revision"] = i.Commit
	if i.Branch != "" {
		backupInfo["branch"] = i.Branch
	}
	backupInfo["dirty"] = i.Dirty
	return backupInfo
}
