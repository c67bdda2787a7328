// Package platform maps a content URL to the platform it was published on.
package platform

import (
	"net/url"
	"strings"
)

const (
	Instagram = "instagram"
	YouTube   = "youtube"
	TikTok    = "tiktok"
	Twitter   = "twitter"
	Facebook  = "facebook"
	Threads   = "threads"
	NaverBlog = "naver_blog"
	Blog      = "blog"
	Other     = "other"
)

// domains is matched against the host and each of its parent domains, most
// specific first, so blog.naver.com wins over a bare naver.com entry.
var domains = map[string]string{
	"instagram.com":  Instagram,
	"instagr.am":     Instagram,
	"youtube.com":    YouTube,
	"youtu.be":       YouTube,
	"tiktok.com":     TikTok,
	"twitter.com":    Twitter,
	"x.com":          Twitter,
	"facebook.com":   Facebook,
	"fb.com":         Facebook,
	"fb.watch":       Facebook,
	"threads.net":    Threads,
	"blog.naver.com": NaverBlog,
	"tistory.com":    Blog,
	"medium.com":     Blog,
	"blogspot.com":   Blog,
	"wordpress.com":  Blog,
	"substack.com":   Blog,
}

// Classifier is the pure URL -> platform tag function coordinators depend on.
type Classifier interface {
	Classify(rawURL string) string
}

type DomainClassifier struct{}

func NewClassifier() DomainClassifier {
	return DomainClassifier{}
}

func (DomainClassifier) Classify(rawURL string) string {
	return Classify(rawURL)
}

// Classify returns the platform tag for rawURL, or Other when the domain is
// unknown or the URL cannot be parsed.
func Classify(rawURL string) string {
	host := hostOf(rawURL)
	if host == "" {
		return Other
	}

	for {
		if tag, ok := domains[host]; ok {
			return tag
		}
		dot := strings.IndexByte(host, '.')
		if dot < 0 || !strings.Contains(host[dot+1:], ".") {
			return Other
		}
		host = host[dot+1:]
	}
}

func hostOf(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}
