package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/hvml-run/hvmi/runtime"
)

// GitTransport fetches a single file out of a git repository named by
// a "git://host/path/to/repo.git//inner/path[#ref]" URI: the part
// after "//" is the in-repo path, and an optional "#ref" fragment
// names the branch/tag/commit (default HEAD).
type GitTransport struct{}

func (GitTransport) Fetch(ctx context.Context, u *url.URL, method Method, params *runtime.Atom) (Result, error) {
	repoURL, innerPath, found := strings.Cut(u.Opaque+u.Path, "//")
	if !found {
		return Result{}, runtime.NewError(runtime.ErrInvalidValue, "", fmt.Errorf("fetch: git URI must separate repo and in-repo path with //"))
	}
	cloneURL := "https://" + strings.TrimPrefix(repoURL, "//")
	if u.Host != "" {
		cloneURL = "https://" + u.Host + "/" + strings.TrimPrefix(repoURL, "/")
	}

	fs := memfs.New()
	repo, err := git.CloneContext(ctx, memory.NewStorage(), fs, &git.CloneOptions{
		URL:   cloneURL,
		Depth: 1,
	})
	if err != nil {
		return Result{}, runtime.NewError(runtime.ErrRequestFailed, "", err)
	}

	if ref := u.Fragment; ref != "" {
		wt, err := repo.Worktree()
		if err != nil {
			return Result{}, runtime.NewError(runtime.ErrInternalFailure, "", err)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(ref)}); err != nil {
			return Result{}, runtime.NewError(runtime.ErrEntityNotFound, "", err)
		}
	}

	file, err := fs.Open(innerPath)
	if err != nil {
		return Result{}, runtime.NewError(runtime.ErrEntityNotFound, "", err)
	}
	defer file.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return Result{}, runtime.NewError(runtime.ErrInternalFailure, "", err)
	}
	return Result{RetCode: 200, MimeType: "application/octet-stream", Body: io.NopCloser(&buf)}, nil
}
