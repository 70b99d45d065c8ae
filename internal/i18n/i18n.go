// Package i18n provides localized printers for CLI output.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we have catalog entries for
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

// Message keys shared by the CLI summary lines.
const (
	MsgChanged   = "changed: %s %s (state=%s)\n"
	MsgUnchanged = "ok: %s %s (state=%s)\n"
	MsgFailed    = "failed: %s %s: %s\n"
	MsgPlanned   = "would run: %s\n"
	MsgApplied   = "ran: %s\n"
)

func init() {
	_ = message.SetString(language.German, MsgChanged, "geändert: %s %s (Zustand=%s)\n")
	_ = message.SetString(language.German, MsgUnchanged, "ok: %s %s (Zustand=%s)\n")
	_ = message.SetString(language.German, MsgFailed, "fehlgeschlagen: %s %s: %s\n")
	_ = message.SetString(language.German, MsgPlanned, "würde ausführen: %s\n")
	_ = message.SetString(language.German, MsgApplied, "ausgeführt: %s\n")
}

// MatchLanguage returns the best supported language for a locale string
// such as "de_DE.UTF-8" or "en-US".
func MatchLanguage(locale string) language.Tag {
	if i := strings.Index(locale, "."); i != -1 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return DefaultLang
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLang
	}
	return SupportedLangs[idx]
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	lang := os.Getenv("LC_ALL")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	return message.NewPrinter(MatchLanguage(lang))
}
