package service

import (
	"context"
	"errors"
	"strings"

	"instasphere/internal/changefeed"
	"instasphere/internal/model"
	"instasphere/internal/pkg"
	"instasphere/internal/repository/mysql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostService struct {
	repo        *mysql.PostRepository
	commentRepo *mysql.CommentRepository
	likeRepo    *mysql.PostLikeRepository
	pub         *changefeed.Publisher
}

func NewPostService(pub *changefeed.Publisher) *PostService {
	return &PostService{
		repo:        &mysql.PostRepository{},
		commentRepo: &mysql.CommentRepository{},
		likeRepo:    &mysql.PostLikeRepository{},
		pub:         pub,
	}
}

// List 最新 50 条，并合并当前用户的点赞状态
func (s *PostService) List(ctx context.Context, viewerID string) ([]model.Post, error) {
	posts, err := s.repo.List(ctx, 50)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	if viewerID == "" || len(posts) == 0 {
		return posts, nil
	}

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	liked, err := s.likeRepo.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}
	for i := range posts {
		posts[i].UserLiked = liked[posts[i].ID]
	}
	return posts, nil
}

func (s *PostService) Create(ctx context.Context, author *model.User, title, content, imageURL string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkg.Validationf("post title is required")
	}

	post := &model.Post{
		ID:        uuid.NewString(),
		UserID:    author.ID,
		UserName:  author.Username,
		AvatarURL: author.AvatarURL,
		Title:     title,
		Content:   strings.TrimSpace(content),
		ImageURL:  imageURL,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, pkg.Writef("%v", err)
	}

	s.pub.Publish(ctx, changefeed.TablePosts, changefeed.OpInsert, post, nil)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, operatorID, postID string) error {
	old, err := s.repo.FindByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkg.Loadf("%v", err)
	}

	affected, err := s.repo.DeleteWithPermission(ctx, postID, operatorID)
	if err != nil {
		return pkg.Writef("%v", err)
	}
	if affected == 0 {
		return pkg.Authorizationf("you can only delete your own posts")
	}

	s.pub.Publish(ctx, changefeed.TablePosts, changefeed.OpDelete, nil, old)
	return nil
}

// ToggleLike 翻转点赞，返回刷新后的帖子
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*model.Post, error) {
	liked, err := s.likeRepo.TogglePostLike(ctx, userID, postID)
	if err != nil {
		return nil, pkg.Writef("%v", err)
	}
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, pkg.Loadf("%v", err)
	}
	post.UserLiked = liked

	s.pub.Publish(ctx, changefeed.TablePosts, changefeed.OpUpdate, post, nil)
	return post, nil
}

func (s *PostService) Share(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.repo.IncrementShares(ctx, postID)
	if err != nil {
		return nil, pkg.Writef("%v", err)
	}
	s.pub.Publish(ctx, changefeed.TablePosts, changefeed.OpUpdate, post, nil)
	return post, nil
}

// Comments 平铺评论按父子归并成两层树，并合并点赞状态
func (s *PostService) Comments(ctx context.Context, viewerID, postID string) ([]*model.PostComment, error) {
	flat, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, mysql.WrapLoadErr(err)
	}

	if viewerID != "" && len(flat) > 0 {
		ids := make([]string, len(flat))
		for i := range flat {
			ids[i] = flat[i].ID
		}
		liked, err := s.likeRepo.LikedCommentIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, mysql.WrapLoadErr(err)
		}
		for i := range flat {
			flat[i].UserLiked = liked[flat[i].ID]
		}
	}

	byID := make(map[string]*model.PostComment, len(flat))
	var roots []*model.PostComment
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}
	for i := range flat {
		c := &flat[i]
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.ReplyList = append(parent.ReplyList, c)
		} else {
			roots = append(roots, c) // 父评论已删，回复提升为顶层
		}
	}
	return roots, nil
}

func (s *PostService) AddComment(ctx context.Context, author *model.User, postID, content string, parentID *string) (*model.PostComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkg.Validationf("comment content is empty")
	}
	if len([]rune(content)) > maxMessageLen {
		return nil, pkg.Validationf("comment exceeds %d characters", maxMessageLen)
	}

	c := &model.PostComment{
		ID:        uuid.NewString(),
		PostID:    postID,
		ParentID:  parentID,
		UserID:    author.ID,
		UserName:  author.Username,
		AvatarURL: author.AvatarURL,
		Content:   content,
	}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		switch {
		case errors.Is(err, mysql.ErrParentNotFound):
			return nil, pkg.Validationf("parent comment not found")
		case errors.Is(err, mysql.ErrNestedReply):
			return nil, pkg.Validationf("replies cannot be nested")
		}
		return nil, pkg.Writef("%v", err)
	}

	s.pub.Publish(ctx, changefeed.TablePostComments, changefeed.OpInsert, c, nil)
	if post, err := s.repo.FindByID(ctx, postID); err == nil {
		s.pub.Publish(ctx, changefeed.TablePosts, changefeed.OpUpdate, post, nil)
	}
	return c, nil
}

func (s *PostService) DeleteComment(ctx context.Context, operatorID, commentID string) error {
	old, err := s.commentRepo.FindByID(ctx, commentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkg.Loadf("%v", err)
	}

	affected, err := s.commentRepo.DeleteWithPermission(ctx, commentID, operatorID)
	if err != nil {
		return pkg.Writef("%v", err)
	}
	if affected == 0 {
		return pkg.Authorizationf("you can only delete your own comments")
	}

	s.pub.Publish(ctx, changefeed.TablePostComments, changefeed.OpDelete, nil, old)
	return nil
}

func (s *PostService) ToggleCommentLike(ctx context.Context, userID, commentID string) (*model.PostComment, error) {
	liked, err := s.likeRepo.ToggleCommentLike(ctx, userID, commentID)
	if err != nil {
		return nil, pkg.Writef("%v", err)
	}
	c, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, pkg.Loadf("%v", err)
	}
	c.UserLiked = liked

	s.pub.Publish(ctx, changefeed.TablePostComments, changefeed.OpUpdate, c, nil)
	return c, nil
}
