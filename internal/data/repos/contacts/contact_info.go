package contacts

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/dbctx"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type ContactInfoRepo interface {
	Create(dbc dbctx.Context, info *types.ContactInfo) (*types.ContactInfo, error)
	Delete(dbc dbctx.Context, personID, id uuid.UUID) (bool, error)
}

type contactInfoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContactInfoRepo(db *gorm.DB, baseLog *logger.Logger) ContactInfoRepo {
	return &contactInfoRepo{
		db:  db,
		log: baseLog.With("repo", "ContactInfoRepo"),
	}
}

func (r *contactInfoRepo) Create(dbc dbctx.Context, info *types.ContactInfo) (*types.ContactInfo, error) {
	if info == nil {
		return nil, fmt.Errorf("nil contact info")
	}
	if info.PersonID == uuid.Nil {
		return nil, fmt.Errorf("contact info without person")
	}
	if info.ID == uuid.Nil {
		info.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(info).Error; err != nil {
		return nil, err
	}
	return info, nil
}

// Delete only removes the entry when it belongs to personID.
func (r *contactInfoRepo) Delete(dbc dbctx.Context, personID, id uuid.UUID) (bool, error) {
	if personID == uuid.Nil || id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Where("id = ? AND person_id = ?", id, personID).
		Delete(&types.ContactInfo{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
