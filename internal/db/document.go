package db

import "time"

// Document 以 JSON 文本保存一个内容文档
// (Collection, DocKey) 唯一确定一条记录，例如 settings/about
type Document struct {
	ID         uint   `gorm:"primaryKey"`
	Collection string `gorm:"size:100;not null;uniqueIndex:idx_documents_collection_key"`
	DocKey     string `gorm:"column:doc_key;size:100;not null;uniqueIndex:idx_documents_collection_key"`
	Body       string `gorm:"type:text;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 返回自定义表名
func (Document) TableName() string {
	return "documents"
}
