package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Translator resolves error codes into localized messages. Translation files
// are TOML bundles named active.<lang>.toml where keys are machine error codes.
type Translator struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

// New creates a translator with the given default language tag ("en", "es").
func New(defaultLang string) *Translator {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		tag = language.English
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	return &Translator{
		bundle:      bundle,
		defaultLang: tag,
	}
}

// LoadTranslations loads every active.*.toml file from dir.
func (t *Translator) LoadTranslations(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := t.bundle.LoadMessageFile(filepath.Join(dir, file.Name())); err != nil {
			return fmt.Errorf("load translation file %s: %w", file.Name(), err)
		}
	}

	return nil
}

// Translate resolves messageID for the requested language, falling back to
// defaultMessage when no translation exists.
func (t *Translator) Translate(lang, messageID, defaultMessage string) string {
	if t == nil {
		return defaultMessage
	}

	localizer := i18n.NewLocalizer(t.bundle, lang, t.defaultLang.String())
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    messageID,
			Other: defaultMessage,
		},
	})
	if err != nil || msg == "" {
		return defaultMessage
	}
	return msg
}
