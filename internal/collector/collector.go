// Package collector walks a directory tree and produces the ordered file
// records that get uploaded into a project.
package collector

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
)

// FileRecord is one collected source file. Path is relative to the scan root
// and '/'-separated.
type FileRecord struct {
	Path     string
	Content  string
	Language string
	Size     int
	Lines    int
}

// Options bound a collection run.
type Options struct {
	// MaxFiles caps the number of collected files; <= 0 means no cap.
	MaxFiles int
	// MaxFileBytes skips files larger than this many bytes; <= 0 means no limit.
	MaxFileBytes int64
}

// Directory segments never descended into, regardless of ignore rules.
var deniedSegments = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"target":       {},
	"__pycache__":  {},
	".idea":        {},
	".vscode":      {},
	"bin":          {},
	"obj":          {},
}

// Collector walks directory trees and filters files into records.
type Collector struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Collector {
	return &Collector{log: log}
}

// Collect walks root depth-first and returns up to opts.MaxFiles records,
// sorted lexicographically by path so output is deterministic across
// filesystems. Unreadable or non-UTF-8 files are skipped with a warning.
// When the cap is reached the walk stops promptly and whatever was collected
// is returned without error.
func (c *Collector) Collect(root string, opts Options) ([]FileRecord, error) {
	rules := loadIgnoreRules(root)

	var records []FileRecord
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			c.log.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if _, denied := deniedSegments[d.Name()]; denied {
				return fs.SkipDir
			}
			if rules != nil && rules.MatchesPath(rel+"/") {
				return fs.SkipDir
			}
			return nil
		}

		if opts.MaxFiles > 0 && len(records) >= opts.MaxFiles {
			return fs.SkipAll
		}
		if !RecognizedExt(rel) {
			return nil
		}
		if rules != nil && rules.MatchesPath(rel) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			c.log.Warn("skipping file without info", zap.String("path", rel), zap.Error(infoErr))
			return nil
		}
		if opts.MaxFileBytes > 0 && info.Size() > opts.MaxFileBytes {
			c.log.Warn("skipping oversized file", zap.String("path", rel), zap.Int64("size", info.Size()))
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			c.log.Warn("skipping unreadable file", zap.String("path", rel), zap.Error(readErr))
			return nil
		}
		if !utf8.Valid(data) {
			c.log.Warn("skipping non-text file", zap.String("path", rel))
			return nil
		}

		content := string(data)
		records = append(records, FileRecord{
			Path:     rel,
			Content:  content,
			Language: LanguageForPath(rel),
			Size:     len(data),
			Lines:    CountLines(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// CountLines counts newline-terminated lines plus a trailing partial line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

func loadIgnoreRules(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
