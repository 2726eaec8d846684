package service

import (
	"context"
	"testing"

	"craftnexus/internal/models"
	"craftnexus/internal/repository"
	"craftnexus/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestBuildCommentTree(t *testing.T) {
	flat := []*models.Comment{
		{ID: 1},
		{ID: 2, ParentID: uintPtr(1)},
		{ID: 3, ParentID: uintPtr(2)},
		{ID: 4},
		{ID: 5, ParentID: uintPtr(99)},
		{ID: 6, ParentID: uintPtr(1)},
	}

	roots := BuildCommentTree(flat)
	require.Len(t, roots, 3)
	assert.Equal(t, []uint{1, 4, 5}, []uint{roots[0].ID, roots[1].ID, roots[2].ID})
	require.Len(t, roots[0].Replies, 2)
	assert.Equal(t, uint(2), roots[0].Replies[0].ID)
	assert.Equal(t, uint(6), roots[0].Replies[1].ID)
	require.Len(t, roots[0].Replies[0].Replies, 1)
	assert.Equal(t, uint(3), roots[0].Replies[0].Replies[0].ID)
	assert.NotNil(t, roots[1].Replies)
}

func TestCommentService_ThreadedLifecycle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	notify := &notifierStub{}
	alice := testutil.CreateUser(t, db, "alice", false)
	bob := testutil.CreateUser(t, db, "bob", false)
	admin := testutil.CreateUser(t, db, "admin", true)

	news := NewNewsService(repository.NewNewsRepository(db))
	article, err := news.Create(ctx, admin.ID, NewsInput{Title: "Trails & Tales", Content: "Archaeology!", Publish: true})
	require.NoError(t, err)
	draft, err := news.Create(ctx, admin.ID, NewsInput{Title: "Unreleased", Content: "shh"})
	require.NoError(t, err)

	svc := NewCommentService(repository.NewCommentRepository(db), notify, adminSet(admin.ID))

	root, err := svc.Create(ctx, CreateCommentInput{UserID: alice.ID, TargetType: models.CommentTargetNews, TargetID: article.ID, Content: "Love the sniffer"})
	require.NoError(t, err)
	reply, err := svc.Create(ctx, CreateCommentInput{UserID: bob.ID, TargetType: models.CommentTargetNews, TargetID: article.ID, ParentID: &root.ID, Content: "Same here"})
	require.NoError(t, err)
	require.Equal(t, 1, notify.count())
	assert.Equal(t, alice.ID, notify.sent[0].UserID)
	assert.Equal(t, models.NotificationCommentReply, notify.sent[0].Type)

	_, err = svc.Create(ctx, CreateCommentInput{UserID: bob.ID, TargetType: models.CommentTargetNews, TargetID: draft.ID, Content: "early"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = svc.Create(ctx, CreateCommentInput{UserID: bob.ID, TargetType: "video", TargetID: article.ID, Content: "x"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
	_, err = svc.Create(ctx, CreateCommentInput{UserID: bob.ID, TargetType: models.CommentTargetMod, TargetID: article.ID, ParentID: &root.ID, Content: "x"})
	assert.Error(t, err)

	_, err = svc.Update(ctx, UpdateCommentInput{UserID: bob.ID, CommentID: root.ID, Content: "edited"})
	assert.True(t, models.IsCode(err, models.CodeForbidden))
	updated, err := svc.Update(ctx, UpdateCommentInput{UserID: alice.ID, CommentID: root.ID, Content: "Love the sniffer mob"})
	require.NoError(t, err)
	assert.Equal(t, "Love the sniffer mob", updated.Content)

	// Root has a reply, so it becomes a tombstone.
	require.NoError(t, svc.Delete(ctx, alice.ID, root.ID))
	tree, err := svc.ListTree(ctx, models.CommentTargetNews, article.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.True(t, tree[0].IsDeleted)
	assert.Empty(t, tree[0].Content)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, reply.ID, tree[0].Replies[0].ID)

	assert.True(t, models.IsCode(svc.Delete(ctx, alice.ID, root.ID), models.CodeNotFound))
	assert.True(t, models.IsCode(svc.Delete(ctx, alice.ID, reply.ID), models.CodeForbidden))

	// Removing the last reply prunes the tombstone too.
	require.NoError(t, svc.Delete(ctx, admin.ID, reply.ID))
	tree, err = svc.ListTree(ctx, models.CommentTargetNews, article.ID)
	require.NoError(t, err)
	assert.Empty(t, tree)
}
