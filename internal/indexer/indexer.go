// Package indexer scans a source directory and builds the site Index.
package indexer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/frontmatter"
	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/logging"
	"git.home.luguber.info/inful/docpress/internal/site"
)

// Options configures a scan.
type Options struct {
	// Ignore skips source names it matches. Nil skips nothing.
	Ignore *regexp.Regexp
	// DisplayName maps a category name to its display name. Nil keeps names.
	DisplayName func(string) string
	Logger      *slog.Logger
}

// Scan enumerates the direct children of dir and returns the ordered Index.
// It fails when no eligible source file is found.
func Scan(dir string, opts Options) (*site.Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "source directory is not readable").
			WithContext("source_dir", dir)
	}

	var articles []*site.Article
	byKey := make(map[string]string)
	for _, entry := range entries {
		if opts.Ignore != nil && opts.Ignore.MatchString(entry.Name()) {
			logger.Debug("Skipping ignored source", logfields.Name(entry.Name()))
			continue
		}
		path := filepath.Join(dir, entry.Name())

		art, ok := readArticle(path, entry, logger)
		if !ok {
			continue
		}
		if prev, dup := byKey[art.CacheKey()]; dup {
			logger.Warn("Skipping source whose name collides with another source",
				logfields.Path(path), slog.String("conflicts_with", prev))
			continue
		}
		byKey[art.CacheKey()] = path
		articles = append(articles, art)
	}

	if len(articles) == 0 {
		return nil, derrors.EmptyIndex(dir)
	}

	return site.NewIndex(articles, collectCategories(articles, opts.DisplayName)), nil
}

// readArticle builds an Article for one directory entry. It reports false
// for non-regular and unreadable files.
func readArticle(path string, entry os.DirEntry, logger *slog.Logger) (*site.Article, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		logger.Debug("Skipping non-regular source", logfields.Path(path))
		return nil, false
	}

	// #nosec G304 - path is a direct child of the configured source directory
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("Skipping unreadable source", logfields.Path(path), logfields.Error(err))
		return nil, false
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		logger.Warn("Ignoring malformed front matter", logfields.Path(path), logfields.Error(err))
	}

	name := NameFromFile(entry.Name())
	title := norm.NFC.String(doc.Meta.Title)
	return site.NewArticle(path, name, title, info.ModTime(), doc.Meta.Categories), true
}

// NameFromFile strips the extension and surrounding whitespace from a file
// name and normalizes it to NFC.
func NameFromFile(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return norm.NFC.String(strings.TrimSpace(base))
}

// collectCategories creates one Category per referenced name, first-seen
// wins, and adds every referencing Article to it.
func collectCategories(articles []*site.Article, display func(string) string) []*site.Category {
	var (
		order  []*site.Category
		byName = make(map[string]*site.Category)
	)
	for _, a := range articles {
		for _, name := range a.Categories() {
			if c, ok := byName[name]; ok {
				c.Add(a)
				continue
			}
			shown := name
			if display != nil {
				shown = display(name)
			}
			c := site.NewCategory(name, shown, a)
			byName[name] = c
			order = append(order, c)
		}
	}
	return order
}

// String summarises an index for debug output.
func String(idx *site.Index) string {
	var b strings.Builder
	for i := range idx.Len() {
		p := idx.At(i)
		fmt.Fprintf(&b, "%3d %-40s %s\n", i, site.RelPath(p), p.ModTime().Format("2006-01-02 15:04:05"))
	}
	return b.String()
}
