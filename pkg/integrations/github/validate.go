package github

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ErrInvalidProject is returned for project identifiers that are not owner/repo.
var ErrInvalidProject = errors.New("invalid project")

// Project identifies a repository.
type Project struct {
	Owner string
	Repo  string
}

// String returns "owner/repo".
func (p Project) String() string { return p.Owner + "/" + p.Repo }

// ParseProject parses and validates an "owner/repo" identifier.
func ParseProject(ref string) (Project, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(ref), "/")
	if !ok {
		return Project{}, fmt.Errorf("%w %q: use owner/repo", ErrInvalidProject, ref)
	}
	if !validOwner.MatchString(owner) {
		return Project{}, fmt.Errorf("%w %q: owner must be 1-39 alphanumeric characters or hyphens, not starting with a hyphen", ErrInvalidProject, ref)
	}
	if !validRepo.MatchString(repo) || repo == "." || repo == ".." {
		return Project{}, fmt.Errorf("%w %q: repo must be 1-100 alphanumeric characters, hyphens, underscores or dots", ErrInvalidProject, ref)
	}
	return Project{Owner: owner, Repo: repo}, nil
}
