package model

// OutcomeStatus はバッチインポートにおける1アイテムの処理結果種別を表す。
type OutcomeStatus string

const (
	// OutcomeImported はエピソードが新規にインポートされたことを示す。
	OutcomeImported OutcomeStatus = "imported"
	// OutcomeSkipped は同一GUIDの記事が既に存在しインポートを省略したことを示す。
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeNotFound は選択されたGUIDが最新のフィードに存在しなかったことを示す。
	// 選択とインポートの間にフィードが変化した場合に発生する。
	OutcomeNotFound OutcomeStatus = "not_found"
	// OutcomeFailed はフェッチ失敗またはストア障害によりインポートできなかったことを示す。
	OutcomeFailed OutcomeStatus = "failed"
)

// ImportOutcome はバッチインポートにおける1アイテムの結果を表す。
// バッチ全体の結果は入力順のImportOutcomeの列として呼び出し元に報告される。
type ImportOutcome struct {
	GUID   string        `json:"guid"`
	Status OutcomeStatus `json:"status"`
	// Title はインポート成功時のエピソードタイトル。
	Title string `json:"title,omitempty"`
	// Reason はskipped/failedの理由。
	Reason string `json:"reason,omitempty"`
}

// Imported はインポート成功の結果を生成する。
func Imported(guid, title string) ImportOutcome {
	return ImportOutcome{GUID: guid, Status: OutcomeImported, Title: title}
}

// Skipped はインポート省略の結果を生成する。
func Skipped(guid, reason string) ImportOutcome {
	return ImportOutcome{GUID: guid, Status: OutcomeSkipped, Reason: reason}
}

// NotFound はフィード上にエピソードが見つからなかった結果を生成する。
func NotFound(guid string) ImportOutcome {
	return ImportOutcome{GUID: guid, Status: OutcomeNotFound, Reason: "エピソードがフィードに存在しません"}
}

// Failed はインポート失敗の結果を生成する。
func Failed(guid, reason string) ImportOutcome {
	return ImportOutcome{GUID: guid, Status: OutcomeFailed, Reason: reason}
}
