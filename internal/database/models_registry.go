package database

import "craftnexus/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.LinkedAccount{},
		&models.News{},
		&models.TickerItem{},
		&models.ForumCategory{},
		&models.ForumThread{},
		&models.ForumPost{},
		&models.Comment{},
		&models.Mod{},
		&models.Notification{},
		&models.Report{},
		&models.WeaponAnalysisJob{},
	}
}
