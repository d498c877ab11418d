package lang

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	LanguageSelected   = "language.selected"
	CommandsOn         = "on.load.commands.on"
	CommandsOff        = "on.load.commands.off"
	Upgraded           = "on.load.upgraded"
	VersionDev         = "on.load.version.dev"
	UpdateNothing      = "on.load.update.nothing"
	UpdateAvailable    = "on.load.update.available"
	UpdateDownload     = "on.load.update.download"
	UpdateOffline      = "on.load.update.offline"
	UpdateInFlight     = "on.load.update.inflight"
	ZoneTextsDestroyed = "zone.texts.destroyed"
)

var supported = []language.Tag{language.English, language.Japanese}

var messages = map[language.Tag]map[string]string{
	language.English: {
		LanguageSelected:   "Selected %s (%s) as the console language",
		CommandsOn:         "Commands are enabled",
		CommandsOff:        "Commands are disabled",
		Upgraded:           "Data files from a previous version were migrated",
		VersionDev:         "This build is newer than the latest release, you are running a development version",
		UpdateNothing:      "No update found, %s is the latest version",
		UpdateAvailable:    "Version %s is available (current: %s)",
		UpdateDownload:     "Download it from %s",
		UpdateOffline:      "Could not check for updates: %s",
		UpdateInFlight:     "An update check is already running",
		ZoneTextsDestroyed: "Removed the floating texts of deleted zone %s",
	},
	language.Japanese: {
		LanguageSelected:   "コンソールの言語を %s (%s) に設定しました",
		CommandsOn:         "コマンドが有効です",
		CommandsOff:        "コマンドは無効です",
		Upgraded:           "以前のバージョンのデータファイルを移行しました",
		VersionDev:         "最新リリースより新しいビルドです。開発版を使用しています",
		UpdateNothing:      "アップデートはありません。%s が最新バージョンです",
		UpdateAvailable:    "バージョン %s が利用可能です (現在: %s)",
		UpdateDownload:     "%s からダウンロードしてください",
		UpdateOffline:      "アップデートを確認できませんでした: %s",
		UpdateInFlight:     "アップデートの確認は既に実行中です",
		ZoneTextsDestroyed: "削除されたゾーン %s の浮き文字を削除しました",
	},
}

var builder = newCatalog()

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			// SetString only fails on malformed messages, which are fixed above
			_ = b.SetString(tag, key, msg)
		}
	}
	return b
}

// Lang translates console and log messages.
type Lang struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns the supported language closest to code. An empty code selects
// English.
func New(code string) (*Lang, error) {
	tag := language.English
	if code != "" {
		parsed, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("parsing language %q: %w", code, err)
		}
		_, idx, _ := language.NewMatcher(supported).Match(parsed)
		tag = supported[idx]
	}

	return &Lang{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}, nil
}

func (l *Lang) Tag() language.Tag {
	return l.tag
}

// Name returns the language's name in itself, e.g. "日本語".
func (l *Lang) Name() string {
	return display.Self.Name(l.tag)
}

func (l *Lang) Translate(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}
