// Package content turns vendor-shaped scraped posts into the handful of
// values the pipeline needs. Every function here is pure and total: any
// input, however malformed, yields an empty string or zero.
package content

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ifuryst/museos/internal/models"
	"github.com/ifuryst/museos/pkg/util"
)

// MaxTextLength caps the text handed to the language model.
const MaxTextLength = 3000

type MetricKind string

const (
	MetricLikes    MetricKind = "likes"
	MetricComments MetricKind = "comments"
	MetricShares   MetricKind = "shares"
)

// Field names per logical attribute, in priority order. Dotted names walk
// into nested objects.
var (
	textFields = []string{"text", "content", "postText", "commentary", "description", "title"}
	urlFields  = []string{"url", "postUrl", "link", "shareUrl"}
	idFields   = []string{"id", "urn", "postId", "activityUrn"}

	metricFields = map[MetricKind][]string{
		MetricLikes: {
			"numLikes", "likesCount", "likes", "reactionCount", "totalReactionCount",
			"stats.likes", "stats.total_reactions", "socialActivityCounts.numLikes",
		},
		MetricComments: {
			"numComments", "commentsCount", "comments", "commentCount",
			"stats.comments", "socialActivityCounts.numComments",
		},
		MetricShares: {
			"numShares", "sharesCount", "shares", "repostsCount", "reposts",
			"stats.shares", "socialActivityCounts.numShares",
		},
	}
)

// ExtractText returns the first non-blank text field, trimmed and truncated
// to MaxTextLength characters.
func ExtractText(post models.RawPost) string {
	for _, field := range textFields {
		if s, ok := lookup(post, field).(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return util.Truncate(s, MaxTextLength)
			}
		}
	}
	return ""
}

// ExtractMetric returns the first numeric value among the field variants of
// kind. Missing, negative or non-numeric values yield zero.
func ExtractMetric(post models.RawPost, kind MetricKind) int {
	for _, field := range metricFields[kind] {
		if n, ok := toInt(lookup(post, field)); ok {
			return n
		}
	}
	return 0
}

// ExtractEngagement collects all three metrics.
func ExtractEngagement(post models.RawPost) models.Engagement {
	return models.Engagement{
		Likes:    ExtractMetric(post, MetricLikes),
		Comments: ExtractMetric(post, MetricComments),
		Shares:   ExtractMetric(post, MetricShares),
	}
}

func ExtractURL(post models.RawPost) string {
	return firstString(post, urlFields)
}

func ExtractID(post models.RawPost) string {
	return firstString(post, idFields)
}

// DedupKey identifies a post across fetch rounds: its URL, else its ID, else
// the start of its text. Posts with none of these share the empty key.
func DedupKey(post models.RawPost) string {
	if u := ExtractURL(post); u != "" {
		return "url:" + normalizeURL(u)
	}
	if id := ExtractID(post); id != "" {
		return "id:" + id
	}
	if text := ExtractText(post); text != "" {
		return "text:" + strings.ToLower(util.Truncate(text, 100))
	}
	return ""
}

func normalizeURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimSuffix(strings.ToLower(u), "/")
}

func firstString(post models.RawPost, fields []string) string {
	for _, field := range fields {
		switch v := lookup(post, field).(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		case float64, int, int64, json.Number:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func lookup(post models.RawPost, path string) any {
	var cur any = map[string]any(post)
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

func toInt(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		cleaned := strings.NewReplacer(",", "", "_", "", " ", "").Replace(strings.TrimSpace(n))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < 0 {
		return 0, true
	}
	if f > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(f), true
}
