package model

import "time"

type Post struct {
	ID            string `gorm:"type:char(36);primaryKey" json:"id"`
	UserID        string `gorm:"type:char(36);not null;index" json:"user_id"`
	UserName      string `gorm:"size:64;not null" json:"user_name"`
	AvatarURL     string `gorm:"size:255" json:"avatar_url"`
	Title         string `gorm:"size:200;not null" json:"title"`
	Content       string `gorm:"type:text" json:"content"`
	ImageURL      string `gorm:"size:255" json:"image_url"`
	Likes         int64  `gorm:"not null;default:0" json:"likes"`
	CommentsCount int64  `gorm:"not null;default:0" json:"comments_count"`
	Shares        int64  `gorm:"not null;default:0" json:"shares"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 当前用户是否点过赞，读取时按 post_likes 推导，不落库
	UserLiked bool `gorm:"-" json:"user_liked"`
}

func (p *Post) EntityID() string { return p.ID }

// PostComment 帖子评论。ParentID 非空表示回复，只支持一层嵌套
type PostComment struct {
	ID        string  `gorm:"type:char(36);primaryKey" json:"id"`
	PostID    string  `gorm:"type:char(36);not null;index" json:"post_id"`
	ParentID  *string `gorm:"type:char(36);index" json:"parent_id,omitempty"`
	UserID    string  `gorm:"type:char(36);not null" json:"user_id"`
	UserName  string  `gorm:"size:64;not null" json:"user_name"`
	AvatarURL string  `gorm:"size:255" json:"avatar_url"`
	Content   string  `gorm:"type:varchar(2000);not null" json:"content"`
	Likes     int64   `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `json:"created_at"`

	UserLiked bool           `gorm:"-" json:"user_liked"`
	ReplyList []*PostComment `gorm:"-" json:"replies,omitempty"`
}

func (c *PostComment) EntityID() string { return c.ID }

// PostLike 点赞行，(user_id, post_id) / (user_id, comment_id) 各自唯一
type PostLike struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID    string  `gorm:"type:char(36);not null;uniqueIndex:uk_user_post;uniqueIndex:uk_user_comment" json:"user_id"`
	PostID    *string `gorm:"type:char(36);index;uniqueIndex:uk_user_post" json:"post_id,omitempty"`
	CommentID *string `gorm:"type:char(36);index;uniqueIndex:uk_user_comment" json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostLike) TableName() string { return "post_likes" }
