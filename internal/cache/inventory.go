package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	newsSlugKey      = "news:slug:%s"
	modSlugKey       = "mod:slug:%s"
	profileKey       = "user:profile:%s"
	analysisJobKey   = "analysis:job:%s"
	tickerKey        = "ticker:active"
	forumCategoryKey = "forum:categories"
)

const (
	NewsTTL          = 10 * time.Minute
	ModTTL           = 10 * time.Minute
	ProfileTTL       = 5 * time.Minute
	TickerTTL        = 5 * time.Minute
	ForumCategoryTTL = 10 * time.Minute
	// AnalysisJobTTL applies to terminal jobs only; they never change again.
	AnalysisJobTTL = time.Hour
)

func NewsKey(slug string) string {
	return fmt.Sprintf(newsSlugKey, slug)
}

func ModKey(slug string) string {
	return fmt.Sprintf(modSlugKey, slug)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(profileKey, strings.ToLower(username))
}

func AnalysisJobKey(id uuid.UUID) string {
	return fmt.Sprintf(analysisJobKey, id)
}

func TickerKey() string {
	return tickerKey
}

func ForumCategoriesKey() string {
	return forumCategoryKey
}

func keyFamily(key string) string {
	family, _, _ := strings.Cut(key, ":")
	if family == "" {
		return "unknown"
	}
	return family
}
