// cmd/fstree/options.go
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/gagin/fstree/internal/config"
	"github.com/gagin/fstree/internal/filter"
	"github.com/gagin/fstree/internal/ignore"
	"github.com/gagin/fstree/internal/walk"
)

// walkOptions are the traversal flags shared by display and copy.
type walkOptions struct {
	exclude        []string
	include        []string
	extensions     []string
	excludeExts    []string
	depth          int
	showEmpty      bool
	hidden         bool
	followSymlinks bool
	gitignore      bool
	ignoreFile     string
}

func (o *walkOptions) register(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&o.exclude, "exclude", "e", nil, "Regex pattern to exclude (repeatable, adds to config).")
	fs.StringArrayVarP(&o.include, "include", "i", nil, "Regex pattern files must match (repeatable, overrides config).")
	fs.StringSliceVar(&o.extensions, "ext", nil, "Comma-separated file extensions to include.")
	fs.StringSliceVar(&o.excludeExts, "exclude-ext", nil, "Comma-separated file extensions to exclude.")
	fs.IntVarP(&o.depth, "depth", "d", 0, "Maximum depth to descend (>= 1; default unbounded).")
	fs.BoolVar(&o.showEmpty, "show-empty", false, "Keep directories that are empty after filtering.")
	fs.BoolVar(&o.hidden, "hidden", false, "Include entries whose name starts with a dot.")
	fs.BoolVar(&o.followSymlinks, "follow-symlinks", false, "Descend into symlinked directories.")
	fs.BoolVar(&o.gitignore, "gitignore", false, "Skip paths hidden by .gitignore and .ignore files.")
	fs.StringVar(&o.ignoreFile, "ignore-file", "", "Skip paths matching a gitignore-syntax pattern file.")
}

// walkConfig merges config file values with the flags the user actually set
// and compiles the filter rule. Every error here is a configuration error
// and is returned before the filesystem is touched, except for the
// gitignore pre-pass which has to read the tree.
func (o *walkOptions) walkConfig(flags *pflag.FlagSet, root string, cfg config.Config) (walk.Config, error) {
	maxDepth := *cfg.Display.MaxDepth
	if flags.Changed("depth") {
		if o.depth < 1 {
			return walk.Config{}, fmt.Errorf("--depth must be at least 1, got %d", o.depth)
		}
		maxDepth = o.depth
	}

	showEmpty := *cfg.Display.ShowEmptyFolders
	if flags.Changed("show-empty") {
		showEmpty = o.showEmpty
	}
	hidden := *cfg.Filters.ShowHidden
	if flags.Changed("hidden") {
		hidden = o.hidden
	}
	useGitignore := *cfg.Filters.UseGitignore
	if flags.Changed("gitignore") {
		useGitignore = o.gitignore
	}

	// Exclusion is additive; an include list from the command line replaces
	// the configured one.
	excludes := append([]string{}, cfg.Filters.Exclude...)
	excludes = append(excludes, o.exclude...)
	excludes = append(excludes, filter.ExtensionPatterns(o.excludeExts)...)
	includes := cfg.Filters.Include
	if flags.Changed("include") || flags.Changed("ext") {
		includes = append(append([]string{}, o.include...), filter.ExtensionPatterns(o.extensions)...)
	}
	slog.Debug("Final filter patterns", "include", includes, "exclude", excludes)

	rule, err := filter.NewRule(includes, excludes)
	if err != nil {
		return walk.Config{}, err
	}

	ignoreFile := *cfg.Filters.IgnoreFile
	if flags.Changed("ignore-file") {
		ignoreFile = o.ignoreFile
	}

	wcfg := walk.Config{
		Root:           root,
		MaxDepth:       maxDepth,
		ShowEmpty:      showEmpty,
		IncludeHidden:  hidden,
		FollowSymlinks: o.followSymlinks,
		Rule:           rule,
	}
	var ignorers ignore.Chain
	if ignoreFile != "" {
		m, err := ignore.CompileFile(ignoreFile)
		if err != nil {
			return walk.Config{}, err
		}
		ignorers = append(ignorers, m)
	}
	if useGitignore {
		set, err := ignore.Load(root, hidden)
		if err != nil {
			return walk.Config{}, err
		}
		slog.Debug("Loaded ignore rules.", "surviving_files", set.Len())
		ignorers = append(ignorers, set)
	}
	switch len(ignorers) {
	case 0:
	case 1:
		wcfg.Ignore = ignorers[0]
	default:
		wcfg.Ignore = ignorers
	}
	return wcfg, nil
}
