package source

import (
	"context"
	"fmt"
	"os"

	"github.com/gittydocs/gittydocs/internal/config"
)

// Prepared is a source materialized on the local filesystem.
type Prepared struct {
	Dir  string
	Repo config.Repo
	// Owned is set when Dir was created by Prepare and may be removed
	// once nothing serves from it.
	Owned bool
}

// Prepare returns a local directory holding the docs for src. Local
// sources are used in place. GitHub sources are fetched into a new
// directory under workDir, so earlier copies stay intact until their
// owner removes them.
func Prepare(ctx context.Context, src Source, f *Fetcher, workDir string) (*Prepared, error) {
	switch src.Kind {
	case Local:
		return &Prepared{Dir: src.Dir}, nil
	case GitHub:
		if f == nil {
			f = NewFetcher(os.Getenv("GITHUB_TOKEN"))
		}
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
		dest, err := os.MkdirTemp(workDir, "docs-")
		if err != nil {
			return nil, fmt.Errorf("create docs dir: %w", err)
		}
		res, err := f.Fetch(ctx, src.Repo, dest)
		if err != nil {
			_ = os.RemoveAll(dest)
			return nil, err
		}
		return &Prepared{Dir: res.Dir, Repo: src.Repo, Owned: true}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %d", src.Kind)
	}
}
