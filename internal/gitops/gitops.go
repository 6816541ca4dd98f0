// Package gitops versions the transaction archive with the git CLI.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits archive changes.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor signs commits made by import runs.
var DefaultAuthor = Author{Name: "wsbridge", Email: "wsbridge@localhost"}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, Author{}, "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// HasChanges reports whether the working tree differs from HEAD.
func HasChanges(dir string) (bool, error) {
	out, err := git(dir, Author{}, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %s: %w", out, err)
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	if out, err := git(dir, author, "add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	sig := fmt.Sprintf("%s <%s>", author.Name, author.Email)
	if out, err := git(dir, author, "commit", "--quiet", "-m", message, "--author", sig); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(dir, author, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// git runs one git command in dir. The committer identity follows author so
// commits work without a global git config.
func git(dir string, author Author, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	if author.Name != "" {
		cmd.Env = append(cmd.Env,
			"GIT_COMMITTER_NAME="+author.Name,
			"GIT_COMMITTER_EMAIL="+author.Email,
		)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}
