package models

type User struct {
	BaseModel
	Username     string `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"type:text;not null"`
	DisplayName  string `json:"displayName" gorm:"type:varchar(100);not null"`

	Folders []Folder `json:"-" gorm:"foreignKey:OwnerID"`
	Files   []File   `json:"-" gorm:"foreignKey:OwnerID"`
	Windows []Window `json:"-" gorm:"foreignKey:OwnerID"`
}
