package model

// ContentType 离线内容类型，决定前端图标
type ContentType string

const (
	ContentVideo    ContentType = "video"
	ContentDocument ContentType = "document"
	ContentQuiz     ContentType = "quiz"
)

func (t ContentType) Valid() bool {
	return t == ContentVideo || t == ContentDocument || t == ContentQuiz
}

// IconHint 渲染提示：视频使用 video 图标，其余使用 file-text
func (t ContentType) IconHint() string {
	if t == ContentVideo {
		return "video"
	}
	return "file-text"
}

// ContentState 离线内容在三个集合中的归属
type ContentState string

const (
	ContentAvailable   ContentState = "available"
	ContentDownloading ContentState = "downloading"
	ContentDownloaded  ContentState = "downloaded"
)

func (s ContentState) String() string {
	return string(s)
}

// IsActive 是否存在进行中的模拟下载任务
func (s ContentState) IsActive() bool {
	return s == ContentDownloading
}

// swagger:model OfflineContentItem
type OfflineContentItem struct {
	CatalogBase
	Title          string      `gorm:"size:200;not null" json:"title"`
	Type           ContentType `gorm:"type:enum('video','document','quiz');not null" json:"type"`
	Course         string      `gorm:"size:200" json:"course"`
	Size           string      `gorm:"size:20" json:"size"`
	SeedDownloaded bool        `gorm:"default:false" json:"-"`
}

func (OfflineContentItem) TableName() string {
	return "offline_contents"
}

// OfflineContentView 某一时刻单个条目的视图，仅下载中时带进度
type OfflineContentView struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Type       ContentType  `json:"type"`
	Icon       string       `json:"icon"`
	Course     string       `json:"course"`
	Size       string       `json:"size"`
	State      ContentState `json:"state"`
	Progress   *int         `json:"progress,omitempty"`
	PackageURL string       `json:"packageUrl,omitempty"`
}

// StorageUsage 存储占用展示数据
type StorageUsage struct {
	UsedMB  float64 `json:"usedMb"`
	TotalMB float64 `json:"totalMb"`
	Percent float64 `json:"percent"`
}

// OfflineLesson 允许离线缓存的课时
type OfflineLesson struct {
	LessonID    string     `json:"lessonId"`
	Title       string     `json:"title"`
	Type        LessonType `json:"type"`
	ModuleTitle string     `json:"moduleTitle"`
	CourseID    string     `json:"courseId"`
	CourseTitle string     `json:"courseTitle"`
}
