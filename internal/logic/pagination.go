package logic

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Page 分页参数, 从 1 开始
type Page struct {
	Page     int
	PageSize int
}

// Normalize 修正越界的分页参数
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return db.Offset((p.Page - 1) * p.PageSize).Limit(p.PageSize)
}

// forUpdate 行锁, sqlite 不支持 FOR UPDATE, 事务本身已串行
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
