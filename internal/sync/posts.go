package sync

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
)

// PostBackend 帖子/评论的读写面
type PostBackend interface {
	List(ctx context.Context, viewerID string) ([]model.Post, error)
	Create(ctx context.Context, author *model.User, title, content, imageURL string) (*model.Post, error)
	Delete(ctx context.Context, operatorID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (*model.Post, error)
	Share(ctx context.Context, postID string) (*model.Post, error)
	Comments(ctx context.Context, viewerID, postID string) ([]*model.PostComment, error)
	AddComment(ctx context.Context, author *model.User, postID, content string, parentID *string) (*model.PostComment, error)
	DeleteComment(ctx context.Context, operatorID, commentID string) error
	ToggleCommentLike(ctx context.Context, userID, commentID string) (*model.PostComment, error)
}

// PostsSync 帖子流视图。集合缺失时降级 demo 模式：内置帖子 + 纯本地操作，
// 外部不可见差别（操作照样成功，只是不落库、不广播）
type PostsSync struct {
	backend PostBackend
	user    *model.User

	state State
	Posts *Collection[*model.Post]
}

func NewPostsSync(backend PostBackend, user *model.User) *PostsSync {
	return &PostsSync{
		backend: backend,
		user:    user,
		Posts:   NewCollection[*model.Post](),
	}
}

func (p *PostsSync) State() State { return p.state }
func (p *PostsSync) Demo() bool   { return p.state == StateDemo }

func (p *PostsSync) Load(ctx context.Context) error {
	p.state = StateLoading
	list, err := p.backend.List(ctx, p.user.ID)
	if err != nil {
		if errors.Is(err, pkg.ErrCollectionMissing) {
			p.Posts.Replace(demoPosts())
			p.state = StateDemo
			return nil
		}
		p.state = StateFailed
		return err
	}
	items := make([]*model.Post, len(list))
	for i := range list {
		items[i] = &list[i]
	}
	p.Posts.Replace(items)
	p.state = StateLive
	return nil
}

func (p *PostsSync) Create(ctx context.Context, title, content, imageURL string) (*model.Post, error) {
	if p.state == StateDemo {
		post := &model.Post{
			ID:        "local-" + time.Now().UTC().Format("20060102150405.000000000"),
			UserID:    p.user.ID,
			UserName:  p.user.Username,
			AvatarURL: p.user.AvatarURL,
			Title:     title,
			Content:   content,
			ImageURL:  imageURL,
			CreatedAt: time.Now().UTC(),
		}
		p.Posts.Upsert(post)
		return post, nil
	}
	post, err := p.backend.Create(ctx, p.user, title, content, imageURL)
	if err != nil {
		return nil, err
	}
	p.Posts.Upsert(post)
	return post, nil
}

func (p *PostsSync) Delete(ctx context.Context, postID string) error {
	if p.state == StateDemo {
		p.Posts.Remove(postID)
		return nil
	}
	if err := p.backend.Delete(ctx, p.user.ID, postID); err != nil {
		return err
	}
	p.Posts.Remove(postID)
	return nil
}

// ToggleLike demo 模式下本地翻转，两次调用互为逆操作
func (p *PostsSync) ToggleLike(ctx context.Context, postID string) error {
	if p.state == StateDemo {
		post, ok := p.Posts.Get(postID)
		if !ok {
			return nil
		}
		if post.UserLiked {
			post.UserLiked = false
			post.Likes--
		} else {
			post.UserLiked = true
			post.Likes++
		}
		return nil
	}
	post, err := p.backend.ToggleLike(ctx, p.user.ID, postID)
	if err != nil {
		return err
	}
	p.Posts.Upsert(post)
	return nil
}

func (p *PostsSync) Share(ctx context.Context, postID string) error {
	if p.state == StateDemo {
		if post, ok := p.Posts.Get(postID); ok {
			post.Shares++
		}
		return nil
	}
	post, err := p.backend.Share(ctx, postID)
	if err != nil {
		return err
	}
	p.Posts.Upsert(post)
	return nil
}

func (p *PostsSync) Comments(ctx context.Context, postID string) ([]*model.PostComment, error) {
	if p.state == StateDemo {
		return nil, nil
	}
	return p.backend.Comments(ctx, p.user.ID, postID)
}

func (p *PostsSync) AddComment(ctx context.Context, postID, content string, parentID *string) (*model.PostComment, error) {
	if p.state == StateDemo {
		if post, ok := p.Posts.Get(postID); ok {
			post.CommentsCount++
		}
		return &model.PostComment{
			ID:        "local-" + time.Now().UTC().Format("20060102150405.000000000"),
			PostID:    postID,
			ParentID:  parentID,
			UserID:    p.user.ID,
			UserName:  p.user.Username,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}, nil
	}
	return p.backend.AddComment(ctx, p.user, postID, content, parentID)
}

func (p *PostsSync) DeleteComment(ctx context.Context, commentID string) error {
	if p.state == StateDemo {
		return nil
	}
	return p.backend.DeleteComment(ctx, p.user.ID, commentID)
}

func (p *PostsSync) ToggleCommentLike(ctx context.Context, commentID string) error {
	if p.state == StateDemo {
		return nil
	}
	_, err := p.backend.ToggleCommentLike(ctx, p.user.ID, commentID)
	return err
}

// Apply demo 模式不消费变更流，本地视图就是全部事实
func (p *PostsSync) Apply(ev changefeed.Event) {
	if p.state != StateLive || ev.Table != changefeed.TablePosts {
		return
	}
	switch ev.Op {
	case changefeed.OpInsert, changefeed.OpUpdate:
		var post model.Post
		if json.Unmarshal(ev.New, &post) != nil {
			return
		}
		// 变更流里没有 viewer 维度的点赞位，保留本地已知值
		if prev, ok := p.Posts.Get(post.ID); ok {
			post.UserLiked = prev.UserLiked
		}
		p.Posts.Upsert(&post)
	case changefeed.OpDelete:
		var post model.Post
		if json.Unmarshal(ev.Old, &post) != nil {
			return
		}
		p.Posts.Remove(post.ID)
	}
}

// demoPosts 集合缺失时的演示数据，id 固定
func demoPosts() []*model.Post {
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return []*model.Post{
		{
			ID:            "demo-post-1",
			UserID:        "demo-user-1",
			UserName:      "Sarah Chen",
			AvatarURL:     "/demo-avatar.png",
			Title:         "Welcome to the community!",
			Content:       "Glad to have everyone here. Introduce yourself in the comments.",
			Likes:         42,
			CommentsCount: 7,
			Shares:        3,
			CreatedAt:     base,
		},
		{
			ID:            "demo-post-2",
			UserID:        "demo-user-2",
			UserName:      "Marcus Webb",
			AvatarURL:     "/demo-avatar.png",
			Title:         "Weekend photography walk",
			Content:       "Anyone up for a photo walk this Saturday morning?",
			ImageURL:      "/demo-photo.jpg",
			Likes:         18,
			CommentsCount: 4,
			Shares:        1,
			CreatedAt:     base.Add(2 * time.Hour),
		},
		{
			ID:            "demo-post-3",
			UserID:        "demo-user-3",
			UserName:      "Priya Patel",
			AvatarURL:     "/demo-avatar.png",
			Title:         "Tips for new members",
			Content:       "Check the channels list before posting, most topics already have a home.",
			Likes:         27,
			CommentsCount: 2,
			CreatedAt:     base.Add(5 * time.Hour),
		},
	}
}
