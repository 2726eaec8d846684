package server

import (
	"fmt"
	"net/http"
	"testing"

	"craftnexus/internal/models"
	"craftnexus/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.login(t, "operator", true)

	resp := env.do(t, http.MethodPost, "/api/admin/news", admin, map[string]any{
		"title":    "Server Update 1.21",
		"content":  "Trial chambers are open.",
		"category": "Updates",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var draft models.News
	resp.decode(t, &draft)
	assert.Equal(t, "server-update-1-21", draft.Slug)
	assert.False(t, draft.Published)

	// Drafts are invisible to the public API.
	resp = env.do(t, http.MethodGet, "/api/news/"+draft.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, resp.errorBody(t).Code)

	var page PageResponse[models.News]
	env.do(t, http.MethodGet, "/api/news", "", nil).decode(t, &page)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Items)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/news/%d/publish", draft.ID), admin, map[string]any{"published": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/news/"+draft.Slug, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var published models.News
	resp.decode(t, &published)
	assert.True(t, published.Published)
	assert.NotNil(t, published.PublishedAt)

	env.do(t, http.MethodGet, "/api/news?category=updates&limit=500", "", nil).decode(t, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 100, page.Limit)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/news/%d", draft.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/news/%d", draft.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTickerReorder(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.login(t, "operator", true)

	var ids []uint
	for _, text := range []string{"first", "second", "third"} {
		resp := env.do(t, http.MethodPost, "/api/admin/ticker", admin, map[string]any{"text": text})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var item models.TickerItem
		resp.decode(t, &item)
		ids = append(ids, item.ID)
	}

	resp := env.do(t, http.MethodPut, "/api/admin/ticker/order", admin, map[string]any{"ids": []uint{ids[0], ids[1]}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/api/admin/ticker/order", admin, map[string]any{"ids": []uint{ids[2], ids[0], ids[1]}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.TickerItem
	env.do(t, http.MethodGet, "/api/ticker", "", nil).decode(t, &items)
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0].Text)
	assert.Equal(t, "first", items[1].Text)
	assert.Equal(t, "second", items[2].Text)

	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/ticker/%d", ids[2]), admin, map[string]any{"text": "third", "active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.do(t, http.MethodGet, "/api/ticker", "", nil).decode(t, &items)
	assert.Len(t, items, 2)
}

func TestForumFlow(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.login(t, "operator", true)
	_, alice := env.login(t, "alice", false)
	bobID, bob := env.login(t, "bob", false)

	resp := env.do(t, http.MethodPost, "/api/admin/forum/categories", admin, map[string]any{"name": "Redstone"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var category models.ForumCategory
	resp.decode(t, &category)

	resp = env.do(t, http.MethodPost, "/api/forum/categories/"+category.Slug+"/threads", bob, map[string]any{
		"title":   "Piston door help",
		"content": "My 3x3 door jams.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var thread models.ForumThread
	resp.decode(t, &thread)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/forum/threads/%d/posts", thread.ID), alice, map[string]any{"content": "Use observers."})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reply models.ForumPost
	resp.decode(t, &reply)

	// Only the author or an admin may edit.
	resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/forum/posts/%d", reply.ID), bob, map[string]any{"content": "hijack"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/forum/threads/%d", thread.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		Thread     models.ForumThread `json:"thread"`
		Posts      []models.ForumPost `json:"posts"`
		TotalPosts int64              `json:"total_posts"`
	}
	resp.decode(t, &view)
	assert.Len(t, view.Posts, 2)

	var listing ThreadListResponse
	env.do(t, http.MethodGet, "/api/forum/categories/"+category.Slug+"/threads", "", nil).decode(t, &listing)
	assert.Equal(t, int64(1), listing.Total)
	assert.Equal(t, category.ID, listing.Category.ID)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/forum/threads/%d/lock", thread.ID), admin, map[string]any{"value": true})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/forum/threads/%d/posts", thread.ID), alice, map[string]any{"content": "one more"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Thread is locked", resp.errorBody(t).Error)

	// Bob was told about Alice's reply.
	var notes PageResponse[models.Notification]
	env.do(t, http.MethodGet, "/api/notifications", bob, nil).decode(t, &notes)
	require.Equal(t, int64(1), notes.Total)
	assert.Equal(t, bobID, notes.Items[0].UserID)

	resp = env.do(t, http.MethodGet, "/api/forum/categories/nope/threads", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentsOnNews(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.login(t, "operator", true)
	_, alice := env.login(t, "alice", false)
	_, bob := env.login(t, "bob", false)

	resp := env.do(t, http.MethodPost, "/api/admin/news", admin, map[string]any{
		"title":   "Community build day",
		"content": "Bring blocks.",
		"publish": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var article models.News
	resp.decode(t, &article)
	base := fmt.Sprintf("/api/news/%d/comments", article.ID)

	resp = env.do(t, http.MethodPost, base, alice, map[string]any{"content": "Count me in"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var root models.Comment
	resp.decode(t, &root)

	resp = env.do(t, http.MethodPost, base, bob, map[string]any{"content": "Same", "parent_id": root.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", root.ID), bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Deleting a comment with replies leaves a tombstone.
	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d", root.ID), alice, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var tree []models.Comment
	env.do(t, http.MethodGet, base, "", nil).decode(t, &tree)
	require.Len(t, tree, 1)
	assert.True(t, tree[0].IsDeleted)
	assert.Len(t, tree[0].Replies, 1)

	resp = env.do(t, http.MethodPost, "/api/news/9999/comments", alice, map[string]any{"content": "hello?"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, base, "", map[string]any{"content": "anon"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestModCatalog(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.login(t, "operator", true)

	resp := env.do(t, http.MethodPost, "/api/admin/mods", admin, map[string]any{
		"name":          "Sodium",
		"loaders":       []string{"fabric"},
		"game_versions": []string{"1.21"},
		"downloads":     1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/mods/import", admin, map[string]any{
		"mods": []map[string]any{
			{"name": "Create", "source": "modrinth", "external_id": "LNytGWDc", "loaders": []string{"forge"}, "downloads": 5000},
			{"name": "JEI", "source": "curseforge", "external_id": "238222", "downloads": 9000},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result repository.ModImportResult
	resp.decode(t, &result)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)

	// Reimporting the same external id updates in place.
	resp = env.do(t, http.MethodPost, "/api/admin/mods/import", admin, map[string]any{
		"mods": []map[string]any{{"name": "Create", "source": "modrinth", "external_id": "LNytGWDc", "downloads": 6000}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.decode(t, &result)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	var page PageResponse[models.Mod]
	env.do(t, http.MethodGet, "/api/mods?sort=downloads", "", nil).decode(t, &page)
	require.Equal(t, int64(3), page.Total)
	assert.Equal(t, "JEI", page.Items[0].Name)

	env.do(t, http.MethodGet, "/api/mods?loader=fabric", "", nil).decode(t, &page)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "sodium", page.Items[0].Slug)

	resp = env.do(t, http.MethodGet, "/api/mods?sort=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/mods/sodium", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/mods/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotificationReadState(t *testing.T) {
	env := newTestEnv(t)
	aliceID, alice := env.login(t, "alice", false)
	_, bob := env.login(t, "bob", false)

	for i := 0; i < 2; i++ {
		require.NoError(t, env.db.Create(&models.Notification{
			UserID: aliceID,
			Type:   models.NotificationModeration,
			Title:  fmt.Sprintf("notice %d", i),
		}).Error)
	}

	var count struct {
		Count int64 `json:"count"`
	}
	env.do(t, http.MethodGet, "/api/notifications/unread-count", alice, nil).decode(t, &count)
	assert.Equal(t, int64(2), count.Count)

	var page PageResponse[models.Notification]
	env.do(t, http.MethodGet, "/api/notifications", alice, nil).decode(t, &page)
	require.Len(t, page.Items, 2)

	resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", page.Items[0].ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", page.Items[0].ID), alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var updated struct {
		Updated int64 `json:"updated"`
	}
	env.do(t, http.MethodPost, "/api/notifications/read-all", alice, nil).decode(t, &updated)
	assert.Equal(t, int64(1), updated.Updated)

	env.do(t, http.MethodGet, "/api/notifications/unread-count", alice, nil).decode(t, &count)
	assert.Equal(t, int64(0), count.Count)
}

func TestReportsAndBans(t *testing.T) {
	env := newTestEnv(t)
	adminID, admin := env.login(t, "operator", true)
	_, alice := env.login(t, "alice", false)
	bobID, bob := env.login(t, "bob", false)

	resp := env.do(t, http.MethodPost, "/api/admin/forum/categories", admin, map[string]any{"name": "General"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var category models.ForumCategory
	resp.decode(t, &category)

	resp = env.do(t, http.MethodPost, "/api/forum/categories/"+category.Slug+"/threads", bob, map[string]any{
		"title": "Free diamonds", "content": "click here",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var thread models.ForumThread
	resp.decode(t, &thread)

	report := map[string]any{"target_type": "forum_thread", "target_id": thread.ID, "reason": "scam link"}
	resp = env.do(t, http.MethodPost, "/api/reports", alice, report)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Report
	resp.decode(t, &created)
	assert.Equal(t, models.ReportStatusOpen, created.Status)

	resp = env.do(t, http.MethodPost, "/api/reports", alice, report)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var reports PageResponse[models.Report]
	env.do(t, http.MethodGet, "/api/admin/reports?status=open", admin, nil).decode(t, &reports)
	require.Equal(t, int64(1), reports.Total)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/reports/%d/resolve", created.ID), admin, map[string]any{"action": "remove"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/forum/threads/%d", thread.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/users/"+adminID.String()+"/ban", admin, map[string]any{"banned": true, "reason": "oops"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/users/"+bobID.String()+"/ban", admin, map[string]any{"banned": true, "reason": "scamming"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var banned models.User
	resp.decode(t, &banned)
	assert.True(t, banned.IsBanned)

	resp = env.do(t, http.MethodPost, "/api/reports", bob, map[string]any{"target_type": "comment", "target_id": 1, "reason": "revenge"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
