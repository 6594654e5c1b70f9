package metadata

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/handiism/bandcamper/internal/model"
)

const fuzzyThreshold = 0.6

var (
	digitRun        = regexp.MustCompile(`\d+`)
	titleSeparators = regexp.MustCompile(`[_\-\s]+`)
)

// MatchTrack finds the track a file holds.
//
// The first digit run of the file name is matched against track numbers.
// Failing that, the name is compared with each title. A release with a
// single track matches unconditionally. The boolean is false when nothing
// matched.
func MatchTrack(path string, tracks []model.TrackInfo) (model.TrackInfo, bool) {
	if len(tracks) == 0 {
		return model.TrackInfo{}, false
	}

	base := filepath.Base(path)
	name := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	if run := digitRun.FindString(name); run != "" {
		if n, err := strconv.Atoi(run); err == nil {
			if t, ok := lo.Find(tracks, func(t model.TrackInfo) bool { return t.Number == n }); ok {
				return t, true
			}
		}
	}

	if t, ok := lo.Find(tracks, func(t model.TrackInfo) bool {
		title := strings.ToLower(t.Title)
		return title != "" && fuzzyMatch(name, title)
	}); ok {
		return t, true
	}

	if len(tracks) == 1 {
		return tracks[0], true
	}
	return model.TrackInfo{}, false
}

func normalizeTitle(s string) string {
	return strings.TrimSpace(titleSeparators.ReplaceAllString(s, " "))
}

// fuzzyMatch reports whether one normalized string contains the other or
// their word sets overlap by at least fuzzyThreshold.
func fuzzyMatch(a, b string) bool {
	a, b = normalizeTitle(a), normalizeTitle(b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	wordsA := lo.Uniq(strings.Fields(a))
	wordsB := lo.Uniq(strings.Fields(b))
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	shared := len(lo.Intersect(wordsA, wordsB))
	union := len(lo.Union(wordsA, wordsB))
	return float64(shared)/float64(union) >= fuzzyThreshold
}
