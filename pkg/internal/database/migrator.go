package database

import (
	"github.com/callspace/conferencing/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.GroupUnit{},
	&models.GroupMember{},
	&models.Call{},
	&models.Participant{},
	&models.Origin{},
	&models.Invite{},
	&models.ProviderConfig{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
