package po

// MediaItem persisted state of one uploaded recording.
type MediaItem struct {
	BaseModel
	MediaUUID       string  `gorm:"column:media_uuid;type:varchar(36);uniqueIndex" json:"media_uuid"`
	OwnerID         string  `gorm:"column:owner_id;type:varchar(36);index" json:"owner_id"`
	FileName        string  `gorm:"column:file_name;type:varchar(255)" json:"file_name"`
	LocalPath       string  `gorm:"column:local_path;type:varchar(512)" json:"local_path"`
	RemoteKey       string  `gorm:"column:remote_key;type:varchar(512)" json:"remote_key"`
	SizeBytes       int64   `gorm:"column:size_bytes;type:bigint" json:"size_bytes"`
	DurationSeconds float64 `gorm:"column:duration_seconds;type:double;default:0" json:"duration_seconds"`
	Status          string  `gorm:"column:status;type:varchar(20);index" json:"status"`
	Progress        int     `gorm:"column:progress;type:int;default:0" json:"progress"`
	Transcript      string  `gorm:"column:transcript;type:longtext" json:"transcript"`
	ErrorMessage    string  `gorm:"column:error_message;type:varchar(512)" json:"error_message"`
}

// TableName sets the table name.
func (MediaItem) TableName() string {
	return "media_items"
}
