package model

import "time"

// CrawlerURL 爬虫抓取的 toolinfo.json 地址 (crawler/url)
type CrawlerURL struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	URL         string    `gorm:"size:2047;uniqueIndex;not null" json:"url"`
	CreatedByID string    `gorm:"size:36;index" json:"-"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_date"`
}

// TableName 指定表名
func (CrawlerURL) TableName() string {
	return "crawler_urls"
}

// CreatorID 创建者 ID
func (u *CrawlerURL) CreatorID() string {
	return u.CreatedByID
}

// CrawlerRun 一次爬取 (crawler/run)
type CrawlerRun struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	StartDate    time.Time       `gorm:"index" json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`
	CrawledURLs  int             `gorm:"default:0" json:"crawled_urls"`
	NewTools     int             `gorm:"default:0" json:"new_tools"`
	UpdatedTools int             `gorm:"default:0" json:"updated_tools"`
	TotalTools   int             `gorm:"default:0" json:"total_tools"`
	URLs         []CrawlerRunURL `gorm:"foreignKey:RunID" json:"urls,omitempty"`
}

// TableName 指定表名
func (CrawlerRun) TableName() string {
	return "crawler_runs"
}

// CrawlerRunURL 单个地址的爬取结果 (crawler/runurl)
type CrawlerRunURL struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	RunID       string      `gorm:"size:36;index;not null" json:"run_id"`
	URLID       string      `gorm:"size:36;index;not null" json:"url_id"`
	URL         *CrawlerURL `gorm:"foreignKey:URLID" json:"url,omitempty"`
	StatusCode  int         `json:"status_code"`
	Redirected  bool        `json:"redirected"`
	ElapsedMs   int64       `json:"elapsed_ms"`
	SchemaValid bool        `json:"schema"`
	Logs        string      `gorm:"type:text" json:"logs"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_date"`
}

// TableName 指定表名
func (CrawlerRunURL) TableName() string {
	return "crawler_run_urls"
}
