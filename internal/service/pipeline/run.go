package pipeline

import (
	"fmt"

	"github.com/ifuryst/museos/internal/models"
	"github.com/ifuryst/museos/internal/service/content"
	"github.com/ifuryst/museos/pkg/util"
)

// run is the state carried across fetch rounds. seen is only touched
// between rounds, never by the concurrent generate step.
type run struct {
	id        string
	req       Request
	target    int
	round     int
	processed int
	seen      map[string]struct{}
	saved     []models.GeneratedPost
}

func (r *run) remaining() int {
	return r.target - len(r.saved)
}

// dedup drops posts already seen in this or an earlier round and posts with
// nothing to identify them by.
func (r *run) dedup(posts []models.RawPost) []models.RawPost {
	fresh := make([]models.RawPost, 0, len(posts))
	for _, p := range posts {
		key := content.DedupKey(p)
		if key == "" {
			continue
		}
		if _, ok := r.seen[key]; ok {
			continue
		}
		r.seen[key] = struct{}{}
		fresh = append(fresh, p)
	}
	return fresh
}

func (r *run) message() string {
	n := len(r.saved)
	noun := util.Plural(n, "post", "posts")
	switch {
	case n == 0:
		return "Generated 0 posts: no suitable source posts were found this time"
	case n < r.target:
		return fmt.Sprintf("Generated %d of %d requested %s", n, r.target, util.Plural(r.target, "post", "posts"))
	default:
		return fmt.Sprintf("Generated %d %s", n, noun)
	}
}
