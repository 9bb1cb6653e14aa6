package mysql

import (
	"context"
	"errors"

	"instasphere/internal/model"

	"gorm.io/gorm"
)

var ErrParentNotFound = errors.New("parent comment not found")
var ErrNestedReply = errors.New("replies cannot be nested")

type CommentRepository struct{}

// Create 同一事务里校验父评论并维护帖子的 comments_count。
// 父评论自身已是回复时拒绝，保证只有一层嵌套
func (r *CommentRepository) Create(ctx context.Context, c *model.PostComment) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.ParentID != nil {
			var parent model.PostComment
			if err := tx.First(&parent, "id = ?", *c.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentNotFound
				}
				return err
			}
			if parent.ParentID != nil {
				return ErrNestedReply
			}
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", c.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})
}

// ListByPost 平铺取一个帖子的全部评论，升序；分组归并在同步层做
func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]model.PostComment, error) {
	var list []model.PostComment
	err := DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (*model.PostComment, error) {
	var c model.PostComment
	err := DB.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

// DeleteWithPermission 作者或管理员可删，计数同事务回退
func (r *CommentRepository) DeleteWithPermission(ctx context.Context, commentID, operatorID string) (affected int64, err error) {
	err = DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.PostComment
		if err := tx.First(&c, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		res := tx.Exec(`
			DELETE c FROM post_comments c
			WHERE c.id = ?
			  AND (c.user_id = ? OR EXISTS (
			       SELECT 1 FROM users u WHERE u.id = ? AND u.role >= 1
			  ))`,
			commentID, operatorID, operatorID,
		)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return tx.Model(&model.Post{}).
			Where("id = ?", c.PostID).
			UpdateColumn("comments_count", gorm.Expr("CASE WHEN comments_count > 0 THEN comments_count - 1 ELSE 0 END")).Error
	})
	return affected, err
}
