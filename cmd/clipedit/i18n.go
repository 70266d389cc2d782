// Package main provides localization for the clipedit CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Server":   "サーバー",
		"Timeline": "タイムライン",
		"Preview":  "プレビュー",
		"Debug":    "デバッグ",
		"Logging":  "ログ",

		// Root command
		"Assemble clips on a layered timeline and preview them live": "レイヤー化されたタイムラインにクリップを配置し、ライブでプレビュー",

		// Commands
		"Run the editor with its HTTP interface":         "HTTPインターフェース付きでエディタを起動",
		"Print what the engine learns about media files": "メディアファイルの解析結果を表示",

		// Serve flags
		"YAML configuration file":                              "YAML設定ファイル",
		"HTTP listen address":                                  "HTTPの待ち受けアドレス",
		"Path to ffmpeg executable":                            "ffmpeg実行ファイルのパス",
		"Clip to add at startup as PATH,LAYER,START,DURATION":  "起動時に追加するクリップ（PATH,LAYER,START,DURATION）",
		"Preview frame width":                                  "プレビューフレームの幅",
		"Preview frame height":                                 "プレビューフレームの高さ",
		"Preview frame rate":                                   "プレビューのフレームレート",
		"MJPEG stream quality (1-100)":                         "MJPEGストリームの品質（1-100）",
		"Maximum MJPEG frame width (0 = preview size)":         "MJPEGフレームの最大幅（0 = プレビューサイズ）",
		"Enable debug output":                                  "デバッグ出力を有効化",
		"Directory for debug output":                           "デバッグ出力のディレクトリ",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Log format (console, json)":           "ログ形式（console, json）",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Errors
		"At least one file argument is required": "ファイル引数が少なくとも1つ必要です",
		"File not found":                         "ファイルが見つかりません",
	})
}
