package mysql

import (
	"errors"
	"strings"

	"instasphere/internal/pkg"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(dsn string) error {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// IsMissingTable 表不存在（迁移没跑）。同步层靠它降级到 demo 模式
func IsMissingTable(err error) bool {
	if err == nil {
		return false
	}
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == 1146 {
		return true
	}
	return strings.Contains(err.Error(), "doesn't exist")
}

// WrapLoadErr 读路径统一分类：缺表 -> ErrCollectionMissing，其余 -> ErrLoad
func WrapLoadErr(err error) error {
	if err == nil {
		return nil
	}
	if IsMissingTable(err) {
		return pkg.ErrCollectionMissing
	}
	return pkg.Loadf("%v", err)
}
