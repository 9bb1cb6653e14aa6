package mysql

import (
	"context"

	"instasphere/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct{}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return DB.WithContext(ctx).Create(post).Error
}

// List 最新 limit 条，倒序
func (r *PostRepository) List(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var list []model.Post
	err := DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := DB.WithContext(ctx).First(&post, "id = ?", id).Error
	return &post, err
}

// DeleteWithPermission 作者或管理员可删，评论和点赞行一并清掉
func (r *PostRepository) DeleteWithPermission(ctx context.Context, postID, operatorID string) (affected int64, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			DELETE p FROM posts p
			WHERE p.id = ?
			  AND (p.user_id = ? OR EXISTS (
			       SELECT 1 FROM users u WHERE u.id = ? AND u.role >= 1
			  ))`,
			postID, operatorID, operatorID,
		)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.PostComment{}).Error; err != nil {
			return err
		}
		return tx.Where("post_id = ?", postID).Delete(&model.PostLike{}).Error
	})
	return affected, err
}

func (r *PostRepository) IncrementShares(ctx context.Context, postID string) (*model.Post, error) {
	if err := DB.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn("shares", gorm.Expr("shares + 1")).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, postID)
}
