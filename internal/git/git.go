package git

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitInfo contains git repository information
type GitInfo struct {
	Branch    string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	IsDirty   bool   `json:"is_dirty" yaml:"is_dirty"`
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
}

// GetGitInfo retrieves git repository information for the given path.
// It returns nil when path is not inside a repository.
func GetGitInfo(path string) *GitInfo {
	info, _ := GetGitInfoWithRoot(path)
	return info
}

// FindRepoRoot finds the git repository root for a given path
// Returns empty string if not in a git repository
func FindRepoRoot(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return worktree.Filesystem.Root()
}

// GetGitInfoWithRoot retrieves git info and returns the repository root path
func GetGitInfoWithRoot(path string) (*GitInfo, string) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ""
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, ""
	}
	repoRoot := worktree.Filesystem.Root()

	gitInfo := &GitInfo{}

	head, err := repo.Head()
	if err == nil {
		// Use short hash (first 7 characters)
		gitInfo.Commit = head.Hash().String()[:7]
		if head.Name().IsBranch() {
			gitInfo.Branch = head.Name().Short()
		} else {
			gitInfo.Branch = "HEAD" // Detached HEAD
		}
	}

	// Worktree status is the expensive part
	status, err := worktree.Status()
	if err == nil {
		gitInfo.IsDirty = !status.IsClean()
	}

	remoteConfig, err := repo.Config()
	if err == nil {
		if origin := remoteConfig.Remotes["origin"]; origin != nil && len(origin.URLs) > 0 {
			gitInfo.RemoteURL = sanitizeRemoteURL(origin.URLs[0])
		}
	}

	return gitInfo, repoRoot
}

// sanitizeRemoteURL strips credentials from http(s) remote URLs
func sanitizeRemoteURL(remote string) string {
	parsed, err := url.Parse(remote)
	if err != nil || parsed.User == nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return remote
	}
	parsed.User = nil
	return parsed.String()
}

// CommitAuthor signs the initial commit of a generated project
type CommitAuthor struct {
	Name  string
	Email string
	When  time.Time
}

// InitRepository creates a repository in dir, stages every file and records
// one commit. It returns the full commit hash.
func InitRepository(dir, message string, author CommitAuthor) (string, error) {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return "", fmt.Errorf("failed to init repository in %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to stage files: %w", err)
	}

	if author.When.IsZero() {
		author.When = time.Now()
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author.Name,
			Email: author.Email,
			When:  author.When,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	return hash.String(), nil
}
