package persistence

import "time"

// BriefModel represents a scraped brief in the database.
type BriefModel struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	ContentHash    string     `gorm:"column:content_hash;uniqueIndex;size:64;not null"`
	Content        string     `gorm:"column:content;type:text;not null"`
	ScrapedAt      time.Time  `gorm:"column:scraped_at;index;not null"`
	SubjectCompany *string    `gorm:"column:subject_company;size:1024"`
	Sentiment      *string    `gorm:"column:sentiment;index;size:16"`
	Confidence     *float64   `gorm:"column:confidence"`
	ProcessedAt    *time.Time `gorm:"column:processed_at"`
}

// TableName returns the table name.
func (BriefModel) TableName() string {
	return "briefs"
}
