package archive

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
)

const sweepsRoot = "sweeps"

// Artifacts lays sweep output out as sweeps/<sweep id>/<name> in a Store.
type Artifacts struct {
	store Store
}

func NewArtifacts(store Store) *Artifacts {
	return &Artifacts{store: store}
}

// SweepPath is the storage path of a named artifact for a sweep.
func SweepPath(sweepID, name string) string {
	return path.Join(sweepsRoot, sweepID, name)
}

// SaveSweep writes every file under the sweep's directory and returns the
// written paths in name order.
func (a *Artifacts) SaveSweep(ctx context.Context, sweepID string, files map[string][]byte) ([]string, error) {
	if sweepID == "" {
		return nil, fmt.Errorf("sweep id is empty")
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		p := SweepPath(sweepID, name)
		if err := a.store.Put(ctx, p, files[name]); err != nil {
			return written, fmt.Errorf("archiving %s: %w", name, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// Load reads one artifact of a sweep.
func (a *Artifacts) Load(ctx context.Context, sweepID, name string) ([]byte, error) {
	return a.store.Get(ctx, SweepPath(sweepID, name))
}

// Files lists the artifact names stored for a sweep.
func (a *Artifacts) Files(ctx context.Context, sweepID string) ([]string, error) {
	prefix := path.Join(sweepsRoot, sweepID) + "/"
	paths, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, strings.TrimPrefix(p, prefix))
	}
	return names, nil
}

// Sweeps lists the IDs of all archived sweeps.
func (a *Artifacts) Sweeps(ctx context.Context) ([]string, error) {
	paths, err := a.store.List(ctx, sweepsRoot)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var ids []string
	for _, p := range paths {
		rest := strings.TrimPrefix(p, sweepsRoot+"/")
		id, _, ok := strings.Cut(rest, "/")
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
