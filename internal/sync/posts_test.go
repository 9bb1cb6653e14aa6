package sync

import (
	"context"
	"encoding/json"
	"testing"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostBackend struct {
	missing bool
	posts   []model.Post
}

func (f *fakePostBackend) List(context.Context, string) ([]model.Post, error) {
	if f.missing {
		return nil, pkg.ErrCollectionMissing
	}
	return f.posts, nil
}

func (f *fakePostBackend) Create(_ context.Context, author *model.User, title, content, imageURL string) (*model.Post, error) {
	p := model.Post{ID: uuid.NewString(), UserID: author.ID, Title: title, Content: content, ImageURL: imageURL}
	f.posts = append(f.posts, p)
	return &p, nil
}

func (f *fakePostBackend) Delete(context.Context, string, string) error { return nil }

func (f *fakePostBackend) ToggleLike(_ context.Context, _, postID string) (*model.Post, error) {
	for i := range f.posts {
		if f.posts[i].ID == postID {
			if f.posts[i].UserLiked {
				f.posts[i].UserLiked = false
				f.posts[i].Likes--
			} else {
				f.posts[i].UserLiked = true
				f.posts[i].Likes++
			}
			return &f.posts[i], nil
		}
	}
	return nil, pkg.Loadf("post not found")
}

func (f *fakePostBackend) Share(_ context.Context, postID string) (*model.Post, error) {
	for i := range f.posts {
		if f.posts[i].ID == postID {
			f.posts[i].Shares++
			return &f.posts[i], nil
		}
	}
	return nil, pkg.Loadf("post not found")
}

func (f *fakePostBackend) Comments(context.Context, string, string) ([]*model.PostComment, error) {
	return nil, nil
}

func (f *fakePostBackend) AddComment(_ context.Context, author *model.User, postID, content string, parentID *string) (*model.PostComment, error) {
	return &model.PostComment{ID: uuid.NewString(), PostID: postID, UserID: author.ID, Content: content, ParentID: parentID}, nil
}

func (f *fakePostBackend) DeleteComment(context.Context, string, string) error { return nil }

func (f *fakePostBackend) ToggleCommentLike(context.Context, string, string) (*model.PostComment, error) {
	return &model.PostComment{}, nil
}

func TestPostsDemoFallback(t *testing.T) {
	posts := NewPostsSync(&fakePostBackend{missing: true}, testUser())

	// 集合缺失不是错误，降级到演示数据
	require.NoError(t, posts.Load(context.Background()))
	assert.True(t, posts.Demo())
	assert.Equal(t, StateDemo, posts.State())
	assert.Greater(t, posts.Posts.Len(), 0)
}

func TestPostsDemoLikeIsSelfInverse(t *testing.T) {
	posts := NewPostsSync(&fakePostBackend{missing: true}, testUser())
	require.NoError(t, posts.Load(context.Background()))

	target := posts.Posts.Items()[0]
	before := target.Likes

	require.NoError(t, posts.ToggleLike(context.Background(), target.ID))
	after, _ := posts.Posts.Get(target.ID)
	assert.True(t, after.UserLiked)
	assert.Equal(t, before+1, after.Likes)

	require.NoError(t, posts.ToggleLike(context.Background(), target.ID))
	after, _ = posts.Posts.Get(target.ID)
	assert.False(t, after.UserLiked)
	assert.Equal(t, before, after.Likes)
}

func TestPostsDemoIgnoresFeed(t *testing.T) {
	posts := NewPostsSync(&fakePostBackend{missing: true}, testUser())
	require.NoError(t, posts.Load(context.Background()))
	before := posts.Posts.Len()

	raw, _ := json.Marshal(model.Post{ID: "srv-1", Title: "from server"})
	posts.Apply(changefeed.Event{Table: changefeed.TablePosts, Op: changefeed.OpInsert, New: raw})
	assert.Equal(t, before, posts.Posts.Len())
}

func TestPostsLiveApplyKeepsUserLiked(t *testing.T) {
	backend := &fakePostBackend{posts: []model.Post{{ID: "p1", Title: "first", UserLiked: true, Likes: 3}}}
	posts := NewPostsSync(backend, testUser())
	require.NoError(t, posts.Load(context.Background()))

	// 服务端回放不带 viewer 维度的点赞位，合并时不能丢
	raw, _ := json.Marshal(model.Post{ID: "p1", Title: "first", Likes: 4})
	posts.Apply(changefeed.Event{Table: changefeed.TablePosts, Op: changefeed.OpUpdate, New: raw})

	got, ok := posts.Posts.Get("p1")
	require.True(t, ok)
	assert.True(t, got.UserLiked)
	assert.Equal(t, int64(4), got.Likes)
}

func TestPostsLiveCreate(t *testing.T) {
	backend := &fakePostBackend{}
	posts := NewPostsSync(backend, testUser())
	require.NoError(t, posts.Load(context.Background()))
	assert.Equal(t, StateLive, posts.State())

	_, err := posts.Create(context.Background(), "title", "body", "")
	require.NoError(t, err)
	assert.Equal(t, 1, posts.Posts.Len())
}
