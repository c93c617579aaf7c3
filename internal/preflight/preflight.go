package preflight

import (
	"bdnav/internal/bdmv"
	"bdnav/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name" yaml:"name"`
	Passed   bool   `json:"passed" yaml:"passed"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Detail   string `json:"detail" yaml:"detail"`
}

// RunAll executes every check for the disc at root. An empty root falls
// back to the configured disc root.
func RunAll(cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}
	if root == "" {
		root = cfg.Paths.DiscRoot
	}
	if root == "" {
		return []Result{{Name: "Disc root", Detail: "not configured (pass a path or set paths.disc_root)"}}
	}

	layout := bdmv.NewLayout(root)
	results := []Result{CheckReadableDir("Disc root", layout.Root)}
	if !results[0].Passed {
		return results
	}
	results = append(results, CheckDiscLayout(layout)...)
	results = append(results, CheckNavigationSizes(layout, cfg.Decoder.MaxFileBytes))
	if cfg.Paths.CatalogDir != "" {
		results = append(results, CheckWritableDir("Catalog directory", cfg.Paths.CatalogDir))
	}
	return results
}

// Failed reports whether any required check failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
