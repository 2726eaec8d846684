package service

import (
	"context"
	"sync"
	"testing"

	"craftnexus/internal/models"
	"craftnexus/internal/repository"
	"craftnexus/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// notifierStub records notifications instead of storing them.
type notifierStub struct {
	mu   sync.Mutex
	sent []NotifyInput
}

func (n *notifierStub) Notify(_ context.Context, in NotifyInput) (*models.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, in)
	return &models.Notification{UserID: in.UserID, Type: in.Type, Title: in.Title}, nil
}

func (n *notifierStub) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type forumFixture struct {
	db     *gorm.DB
	svc    *ForumService
	notify *notifierStub
	author *models.User
	reader *models.User
	admin  *models.User
}

func newForumFixture(t *testing.T) *forumFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	f := &forumFixture{
		db:     db,
		notify: &notifierStub{},
		author: testutil.CreateUser(t, db, "builder", false),
		reader: testutil.CreateUser(t, db, "miner", false),
		admin:  testutil.CreateUser(t, db, "moderator", true),
	}
	f.svc = NewForumService(repository.NewForumRepository(db), f.notify, adminSet(f.admin.ID))
	_, err := f.svc.CreateCategory(context.Background(), CategoryInput{Name: "Redstone Builds", Description: "Circuits and farms"})
	require.NoError(t, err)
	return f
}

func (f *forumFixture) thread(t *testing.T) *models.ForumThread {
	t.Helper()
	thread, err := f.svc.CreateThread(context.Background(), CreateThreadInput{
		UserID:       f.author.ID,
		CategorySlug: "redstone-builds",
		Title:        "Compact iron farm",
		Content:      "Design for 1.21 with villagers.",
	})
	require.NoError(t, err)
	return thread
}

func TestForumService_Categories(t *testing.T) {
	mr := setupCache(t)
	f := newForumFixture(t)
	ctx := context.Background()

	categories, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "redstone-builds", categories[0].Slug)
	assert.True(t, mr.Exists("forum:categories"))

	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: "Redstone builds"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	updated, err := f.svc.UpdateCategory(ctx, categories[0].ID, CategoryInput{Name: "Redstone", Slug: "redstone", Position: 2})
	require.NoError(t, err)
	assert.Equal(t, "redstone", updated.Slug)
	assert.False(t, mr.Exists("forum:categories"))

	_, err = f.svc.CreateCategory(ctx, CategoryInput{Name: "x"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestForumService_ThreadLifecycle(t *testing.T) {
	f := newForumFixture(t)
	ctx := context.Background()
	thread := f.thread(t)
	assert.Equal(t, f.author.ID, thread.UserID)
	assert.Zero(t, thread.ReplyCount)

	reply, err := f.svc.Reply(ctx, ReplyInput{UserID: f.reader.ID, ThreadID: thread.ID, Content: "Works great on my server"})
	require.NoError(t, err)
	require.Equal(t, 1, f.notify.count())
	assert.Equal(t, f.author.ID, f.notify.sent[0].UserID)
	assert.Equal(t, models.NotificationForumReply, f.notify.sent[0].Type)

	_, err = f.svc.Reply(ctx, ReplyInput{UserID: f.author.ID, ThreadID: thread.ID, Content: "Thanks!"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.notify.count(), "own replies do not notify")

	view, err := f.svc.GetThread(ctx, thread.ID, PageInput{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 3, view.TotalPosts)
	assert.Equal(t, 2, view.Thread.ReplyCount)
	assert.Equal(t, 1, view.Thread.ViewCount)

	_, threads, total, err := f.svc.ListThreads(ctx, "redstone-builds", PageInput{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, thread.ID, threads[0].ID)

	edited, err := f.svc.EditPost(ctx, EditPostInput{UserID: f.reader.ID, PostID: reply.ID, Content: "Works great, 400 iron/h"})
	require.NoError(t, err)
	assert.NotNil(t, edited.EditedAt)

	_, err = f.svc.EditPost(ctx, EditPostInput{UserID: f.author.ID, PostID: reply.ID, Content: "hijack"})
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	err = f.svc.DeletePost(ctx, f.author.ID, reply.ID)
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	require.NoError(t, f.svc.DeletePost(ctx, f.admin.ID, reply.ID))

	first := view.Posts[0]
	err = f.svc.DeletePost(ctx, f.author.ID, first.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	require.NoError(t, f.svc.DeleteThread(ctx, f.author.ID, thread.ID))
	_, err = f.svc.GetThread(ctx, thread.ID, PageInput{})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestForumService_LockedThreadRejectsReplies(t *testing.T) {
	f := newForumFixture(t)
	ctx := context.Background()
	thread := f.thread(t)

	require.NoError(t, f.svc.SetLocked(ctx, thread.ID, true))
	_, err := f.svc.Reply(ctx, ReplyInput{UserID: f.reader.ID, ThreadID: thread.ID, Content: "hello?"})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	require.NoError(t, f.svc.SetPinned(ctx, thread.ID, true))
	assert.True(t, models.IsCode(f.svc.SetPinned(ctx, 9999, true), models.CodeNotFound))
}

func TestForumService_CreateThreadValidation(t *testing.T) {
	f := newForumFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateThread(ctx, CreateThreadInput{UserID: f.author.ID, CategorySlug: "redstone-builds", Title: "no", Content: "x"})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = f.svc.CreateThread(ctx, CreateThreadInput{UserID: f.author.ID, CategorySlug: "missing", Title: "Valid title", Content: "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", excerpt("  short\n text ", 20))
	assert.Equal(t, "abcde…", excerpt("abcdefghij", 5))
}
