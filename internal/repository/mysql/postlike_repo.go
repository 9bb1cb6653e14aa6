package mysql

import (
	"context"
	"errors"

	"instasphere/internal/model"

	"gorm.io/gorm"
)

type PostLikeRepository struct{}

// TogglePostLike 点赞行和计数在一个事务里翻转，返回翻转后的 liked 状态。
// 两次调用互为逆操作，计数不会为负
func (r *PostLikeRepository) TogglePostLike(ctx context.Context, userID, postID string) (liked bool, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pl model.PostLike
		findErr := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&pl).Error
		if findErr == nil {
			if err := tx.Delete(&pl).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(&model.Post{}).
				Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		if err := tx.Create(&model.PostLike{UserID: userID, PostID: &postID}).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
	})
	return liked, err
}

// ToggleCommentLike 同 TogglePostLike，作用在评论上
func (r *PostLikeRepository) ToggleCommentLike(ctx context.Context, userID, commentID string) (liked bool, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pl model.PostLike
		findErr := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&pl).Error
		if findErr == nil {
			if err := tx.Delete(&pl).Error; err != nil {
				return err
			}
			liked = false
			return tx.Model(&model.PostComment{}).
				Where("id = ?", commentID).
				UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		if err := tx.Create(&model.PostLike{UserID: userID, CommentID: &commentID}).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&model.PostComment{}).
			Where("id = ?", commentID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
	})
	return liked, err
}

// LikedPostIDs 当前用户在一批帖子里点过赞的 id 集合
func (r *PostLikeRepository) LikedPostIDs(ctx context.Context, userID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := DB.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *PostLikeRepository) LikedCommentIDs(ctx context.Context, userID string, commentIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := DB.WithContext(ctx).Model(&model.PostLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
