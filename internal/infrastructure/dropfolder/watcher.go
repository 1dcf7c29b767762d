package dropfolder

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultPattern расширения, которые принимает форма загрузки.
const DefaultPattern = "*.{jpg,jpeg,png,gif,webp}"

// Watcher следит за каталогом и сообщает о новых или изменённых изображениях.
type Watcher struct {
	dir     string
	pattern string
}

// New создаёт Watcher. Пустой pattern означает DefaultPattern.
func New(dir, pattern string) (*Watcher, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	return &Watcher{dir: dir, pattern: pattern}, nil
}

// Matches сообщает, подходит ли имя файла под шаблон. Регистр не учитывается.
func (w *Watcher) Matches(name string) bool {
	ok, err := doublestar.Match(w.pattern, strings.ToLower(filepath.Base(name)))
	return err == nil && ok
}

// Run вызывает onFile для каждого созданного или записанного файла до отмены ctx.
// При копировании файл может прийти несколько раз, последний вызов вытесняет предыдущие.
func (w *Watcher) Run(ctx context.Context, onFile func(path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	log.Info().Str("dir", w.dir).Str("pattern", w.pattern).Msg("watching for images")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !w.Matches(ev.Name) {
				continue
			}
			onFile(ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("dir", w.dir).Msg("watcher error")
		}
	}
}
