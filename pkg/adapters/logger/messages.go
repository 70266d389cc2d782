package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Editor lifecycle
		"Editor started":                "エディタを開始しました",
		"Editor stopped":                "エディタを停止しました",
		"Listening on http://%s":        "http://%s で待ち受け中",
		"HTTP shutdown: %s":             "HTTPサーバーの停止: %s",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Queued %s":                     "%s をキューに追加しました",

		// Command results
		"%s failed (%s): %s":                     "%s に失敗しました (%s): %s",
		"%s ignored (%s): %s":                    "%s を無視しました (%s): %s",
		"Added clip %s on layer %d at %s for %s": "クリップ %s をレイヤー %d の %s に %s の長さで追加しました",
		"Seek to %s ignored: no active preview":  "%s へのシークを無視しました: プレビューがありません",
		"Preview did not pick up clip %s: %s":    "プレビューにクリップ %s を反映できませんでした: %s",
		"Startup clip %s not added: %s":          "起動時のクリップ %s を追加できませんでした: %s",
		"Startup clips interrupted: %s":          "起動時のクリップ追加を中断しました: %s",
		"Added %d of %d startup clips":           "起動時のクリップを %d / %d 件追加しました",

		// Assets
		"Probing %s":                                     "%s を解析中",
		"Resolved %s (%s)":                               "%s を解決しました (%s)",
		"Asset cache hit for %s":                         "%s はキャッシュ済みです",
		"mp4 probe of %s failed (%s), trying ffprobe":    "%s のMP4解析に失敗しました (%s)。ffprobeを試します",
		"Using ffmpeg at %s":                             "ffmpeg を使用: %s",
		"Cannot decode %s: %s":                           "%s をデコードできません: %s",
		"Decoding %s failed: %s":                         "%s のデコードに失敗しました: %s",

		// Preview sessions
		"Preview session %s started (%dx%d @ %.2f fps)":          "プレビューセッション %s を開始しました (%dx%d @ %.2f fps)",
		"Preview session %s: %s -> %s":                           "プレビューセッション %s: %s -> %s",
		"Preview session %s seeked to %s":                        "プレビューセッション %s を %s にシークしました",
		"Preview session %s stopped (%d delivered, %d dropped)":  "プレビューセッション %s を停止しました (配信 %d, 破棄 %d)",
		"Frame at %s rejected by sink":                           "%s のフレームが受け取られませんでした",
		"Failed to set pipeline to null: %s":                     "パイプラインの停止に失敗しました: %s",
		"Failed to close pipeline: %s":                           "パイプラインのクローズに失敗しました: %s",

		// Debug output
		"Failed to encode timeline: %s":     "タイムラインのエンコードに失敗しました: %s",
		"Failed to save timeline: %s":       "タイムラインの保存に失敗しました: %s",
		"Failed to save debug frame %d: %s": "デバッグフレーム %d の保存に失敗しました: %s",
		"Failed to encode frame %d: %s":     "フレーム %d のエンコードに失敗しました: %s",
	})
}
