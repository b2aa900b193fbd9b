package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

const (
	KeyWin         = "notify.win"
	KeyDraw        = "notify.draw"
	KeyScoresReset = "notify.scores_reset"

	KeyTitle       = "page.title"
	KeyScore       = "page.score"
	KeyResetGame   = "page.reset_game"
	KeyResetScores = "page.reset_scores"
)

const defaultFile = "messages.en.yaml"

//go:embed messages.en.yaml
var defaultFiles embed.FS

var errEmptyKey = errors.New("string value without key")

// Catalog holds user-facing texts keyed by dotted names. Embedded defaults can be
// overridden by yaml files from a directory.
type Catalog struct {
	mu   sync.RWMutex
	data map[string]string
}

func New(overrideDir string) (*Catalog, error) {
	catalog := &Catalog{data: make(map[string]string)}

	raw, err := fs.ReadFile(defaultFiles, defaultFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded messages: %w", err)
	}

	if err = catalog.apply(raw); err != nil {
		return nil, fmt.Errorf("failed to parse embedded messages: %w", err)
	}

	if strings.TrimSpace(overrideDir) != "" {
		if err = catalog.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

// MustNew is New for the embedded defaults only, which are known to parse.
func MustNew() *Catalog {
	catalog, err := New("")
	if err != nil {
		panic(err)
	}

	return catalog
}

func (that *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read messages dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !entry.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, entry.Name())
		}
	}
	slices.Sort(files)

	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		if err = that.apply(raw); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}

	return nil
}

func (that *Catalog) apply(raw []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return err
	}

	flat := make(map[string]string)
	if err := flatten(tree, "", flat); err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for key, value := range flat {
		that.data[key] = value
	}

	return nil
}

func flatten(src any, prefix string, out map[string]string) error {
	switch value := src.(type) {
	case map[string]any:
		for key, nested := range value {
			if prefix != "" {
				key = prefix + "." + key
			}

			if err := flatten(nested, key, out); err != nil {
				return err
			}
		}
	case string:
		if prefix == "" {
			return errEmptyKey
		}
		out[prefix] = value
	case nil:
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, value)
	}

	return nil
}

// Render executes the template stored under key.
func (that *Catalog) Render(key string, data any) (string, error) {
	that.mu.RLock()
	text, ok := that.data[key]
	that.mu.RUnlock()

	if !ok || strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", apperror.ErrTemplateNotFound, key)
	}

	tpl, err := template.New(key).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", key, err)
	}

	var builder strings.Builder
	if err = tpl.Execute(&builder, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", key, err)
	}

	return builder.String(), nil
}

// Text renders key and returns fallback when that fails.
func (that *Catalog) Text(key string, data any, fallback string) string {
	text, err := that.Render(key, data)
	if err != nil {
		return fallback
	}

	return text
}
