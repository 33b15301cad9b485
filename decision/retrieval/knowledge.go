package retrieval

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

// DefaultKnowledgePattern matches markdown files at any depth.
const DefaultKnowledgePattern = "**/*.md"

// LoadKnowledge reads every file under root matching pattern. Document ids are
// slash paths prefixed with the root's base name, e.g. "kb/onboarding.md".
// A missing root yields no documents.
func LoadKnowledge(root, pattern string) ([]Document, error) {
	if root == "" {
		return nil, nil
	}
	if pattern == "" {
		pattern = DefaultKnowledgePattern
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	return loadKnowledgeFS(os.DirFS(root), filepath.Base(filepath.Clean(root)), pattern)
}

func loadKnowledgeFS(fsys fs.FS, prefix, pattern string) ([]Document, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, perrors.NewLoadError(perrors.ErrCodeKnowledgeLoad, pattern, "invalid knowledge pattern", err)
	}
	sort.Strings(matches)

	docs := make([]Document, 0, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, perrors.NewLoadError(perrors.ErrCodeKnowledgeLoad, m, "cannot read knowledge document", err)
		}
		docs = append(docs, Document{ID: path.Join(prefix, m), Text: string(data)})
	}
	return docs, nil
}
