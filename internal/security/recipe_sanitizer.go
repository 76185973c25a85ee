// Package security はアプリケーションのセキュリティ機能を提供する。
//
// RecipeSanitizerService は外部レシピAPIから取得したHTML（概要文や手順）を
// サニタイズし、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// RecipeSanitizerService はレシピHTMLのサニタイズ機能のインターフェースを定義する。
// レシピ詳細・検索結果のAPI応答組み立て時に使用される。
type RecipeSanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, b, i, ul, ol, li, strong, em, img）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// imgタグのsrc属性はhttpsスキームのみ許可される。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// recipeSanitizer はRecipeSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type recipeSanitizer struct {
	policy *bluemonday.Policy
}

// NewRecipeSanitizer はRecipeSanitizerServiceの新しいインスタンスを生成する。
// 外部APIのレシピ概要文はb, i, aタグを多用するため、これらを通過させる。
// ポリシーの内容:
//   - 許可タグ: p, br, a, b, i, ul, ol, li, strong, em, img
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - imgのsrc属性: httpsスキームのみ許可
//   - aタグ: target="_blank" と rel="noopener noreferrer" を自動付与
func NewRecipeSanitizer() *recipeSanitizer {
	p := bluemonday.NewPolicy()

	// script, iframe, style等は許可リストに含めないことで自動的に除去される。
	// on*イベント属性はbluemondayのデフォルトで許可されない。
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"b", "i", "strong", "em",
	)

	// aタグ: 外部レシピサイトへの絶対URLリンクのみ許可する。
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	// imgタグ: src属性はhttpsスキームのみ許可（http, javascript, data等は拒否）。
	// alt属性はアクセシビリティのため許可する。
	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &recipeSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *recipeSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
