package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hitoshi/castpress/internal/model"
)

// Detector はフィードURLの自動検出機能を提供する。
// 設定画面でフィードURLを保存する際に使用され、ポッドキャストのサイトURLが
// 入力された場合でもheadタグのalternateリンクからフィードURLを解決する。
type Detector struct {
	ssrfGuard SSRFValidator
}

// NewDetector はDetectorの新しいインスタンスを生成する。
func NewDetector(ssrfGuard SSRFValidator) *Detector {
	return &Detector{ssrfGuard: ssrfGuard}
}

// feedContentTypes はフィードとして直接認識するContent-Type。
var feedContentTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
}

// xmlContentTypes は汎用XMLのContent-Type（ボディ解析で判定する）。
var xmlContentTypes = []string{
	"text/xml",
	"application/xml",
}

// DetectFeedURL はURLがフィードかHTMLかを判定し、フィードURLを返す。
//  1. SSRF検証
//  2. HTTPリクエスト送信
//  3. Content-Typeとボディからフィード直接判定
//  4. HTMLの場合はheadタグからalternateフィードリンクを検出（RSS優先）
//  5. フィード未検出の場合はエラーを返す
func (d *Detector) DetectFeedURL(ctx context.Context, inputURL string) (string, error) {
	if inputURL == "" {
		return "", model.NewInvalidURLError("URLが入力されていません")
	}

	// SSRF検証
	if err := d.ssrfGuard.ValidateURL(inputURL); err != nil {
		return "", model.NewSSRFBlockedError()
	}

	const maxBodySize = 5 * 1024 * 1024

	client := d.ssrfGuard.NewSafeClient(10*time.Second, maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, inputURL, nil)
	if err != nil {
		return "", model.NewInvalidURLError(err.Error())
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, text/html, */*")

	resp, err := client.Do(req)
	if err != nil {
		return "", model.NewFetchFailedError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", model.NewFetchFailedError(fmt.Sprintf("レスポンスの読み取りに失敗: %v", err))
	}

	contentType := resp.Header.Get("Content-Type")

	// フィード直接判定
	if isDirectFeed(contentType, body) {
		return inputURL, nil
	}

	// HTMLでなければフィード未検出
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.Contains(strings.ToLower(mediaType), "html") {
		return "", model.NewFeedNotDetectedError(inputURL)
	}

	// HTMLのheadタグからフィードリンクを検出
	candidates := parseFeedLinksFromHTML(body, inputURL)
	if len(candidates) == 0 {
		return "", model.NewFeedNotDetectedError(inputURL)
	}

	// ポッドキャストフィードはRSSが標準のため、RSSリンクを優先する
	for _, c := range candidates {
		if c.isRSS {
			return c.url, nil
		}
	}
	return candidates[0].url, nil
}

// isDirectFeed はContent-Typeとボディからレスポンスがフィード本体かどうかを判定する。
func isDirectFeed(contentType string, body []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	mediaType = strings.ToLower(mediaType)

	for _, feedCT := range feedContentTypes {
		if mediaType == feedCT {
			return true
		}
	}

	// 汎用XMLはボディの先頭を検査する
	for _, xmlCT := range xmlContentTypes {
		if mediaType == xmlCT {
			return isFeedXML(body)
		}
	}

	return false
}

// isFeedXML はXMLボディの先頭部分を解析してRSS/Atomフィードかを判定する。
func isFeedXML(body []byte) bool {
	// 先頭4KBを検査（XMLプロローグ + ルート要素が含まれるのに十分）
	checkSize := 4096
	if len(body) < checkSize {
		checkSize = len(body)
	}
	prefix := strings.ToLower(string(body[:checkSize]))

	if strings.Contains(prefix, "<rss") || strings.Contains(prefix, "<rdf:rdf") {
		return true
	}
	if strings.Contains(prefix, "<feed") && strings.Contains(prefix, "http://www.w3.org/2005/atom") {
		return true
	}
	return false
}

// feedLink はHTMLから検出されたフィードリンク候補。
type feedLink struct {
	url   string
	isRSS bool
}

// parseFeedLinksFromHTML はHTMLのheadタグからRSS/Atomのalternateリンクを検出する。
// 相対URLはbaseURLを基準に絶対URLに解決される。
func parseFeedLinksFromHTML(htmlBody []byte, baseURL string) []feedLink {
	var links []feedLink

	baseU, err := url.Parse(baseURL)
	if err != nil {
		return links
	}

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return links

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return links
			}
			if tagName != "link" || !hasAttr {
				continue
			}

			var rel, linkType, href string
			for {
				key, val, more := tokenizer.TagAttr()
				switch strings.ToLower(string(key)) {
				case "rel":
					rel = strings.ToLower(string(val))
				case "type":
					linkType = strings.ToLower(string(val))
				case "href":
					href = string(val)
				}
				if !more {
					break
				}
			}

			if rel != "alternate" || href == "" {
				continue
			}
			if linkType != "application/rss+xml" && linkType != "application/atom+xml" {
				continue
			}

			ref, err := url.Parse(href)
			if err != nil {
				continue
			}

			links = append(links, feedLink{
				url:   baseU.ResolveReference(ref).String(),
				isRSS: linkType == "application/rss+xml",
			})
		}
	}
}
