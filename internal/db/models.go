package db

import "time"

// Provenance values for ads.type, recording which mechanism last set the
// category. An empty type means a manual edit or no categorization yet.
const (
	TypeURLMapping   = "url_mapping"
	TypeTitleMapping = "title_mapping"
	TypeAIResponse   = "ai_response"
)

// Ad maps ads. Rows are written by the external scraping pipeline and
// re-categorized by cascades and the normalization job.
type Ad struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Country     string     `gorm:"column:country;type:text;not null;default:''"`
	Date        *time.Time `gorm:"column:date;type:timestamptz"`
	Title       string     `gorm:"column:title;type:text;not null;default:''"`
	LandingPage string     `gorm:"column:landing_page;type:text;not null;default:''"`
	Website     string     `gorm:"column:website;type:text;not null;default:''"`
	AdNetwork   string     `gorm:"column:ad_network;type:text;not null;default:''"`
	Device      string     `gorm:"column:device;type:text;not null;default:''"`
	Occurrences int        `gorm:"column:occurrences;type:integer;not null;default:1"`
	Category    string     `gorm:"column:category;type:text;not null;default:''"`
	Type        string     `gorm:"column:type;type:text;not null;default:''"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Ad) TableName() string { return "ads" }

// URLMapping maps url_mappings. Identity is the cleaned URL.
type URLMapping struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CleanedURL string    `gorm:"column:cleaned_url;type:text;not null;unique"`
	Category   string    `gorm:"column:category;type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (URLMapping) TableName() string { return "url_mappings" }

// TitleMapping maps title_mappings. Identity is the whitespace-normalized
// title, compared case-insensitively.
type TitleMapping struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Title           string    `gorm:"column:title;type:text;not null"`
	TranslatedTitle string    `gorm:"column:translated_title;type:text;not null;default:''"`
	Language        string    `gorm:"column:language;type:text;not null;default:''"`
	Category        string    `gorm:"column:category;type:text;not null;default:''"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (TitleMapping) TableName() string { return "title_mappings" }

func autoMigrateModels() []any {
	return []any{
		&Ad{},
		&URLMapping{},
		&TitleMapping{},
	}
}
