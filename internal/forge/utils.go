package forge

import (
	"fmt"
	"strings"

	"github.com/festy23/stagebot/internal/forge/model"
)

// ParseRepository parses "owner/name" into a Repository.
func ParseRepository(fullName string) (model.Repository, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return model.Repository{}, fmt.Errorf("invalid repository format: %q", fullName)
	}
	return model.Repository{Owner: owner, Name: name}, nil
}

// ShortSHA abbreviates a commit hash for logs and messages.
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
