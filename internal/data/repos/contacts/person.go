package contacts

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/dbctx"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type PersonRepo interface {
	Create(dbc dbctx.Context, person *types.Person) (*types.Person, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Person, error)
	List(dbc dbctx.Context, withContactInfos bool) ([]*types.Person, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return &personRepo{
		db:  db,
		log: baseLog.With("repo", "PersonRepo"),
	}
}

func (r *personRepo) Create(dbc dbctx.Context, person *types.Person) (*types.Person, error) {
	if person == nil {
		return nil, fmt.Errorf("nil person")
	}
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(person).Error; err != nil {
		return nil, err
	}
	if person.ContactInfos == nil {
		person.ContactInfos = []types.ContactInfo{}
	}
	return person, nil
}

func (r *personRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Person, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var p types.Person
	err := dbc.DB(r.db).
		Preload("ContactInfos", orderContactInfos).
		Where("id = ?", id).
		Limit(1).
		Find(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	if p.ContactInfos == nil {
		p.ContactInfos = []types.ContactInfo{}
	}
	return &p, nil
}

func (r *personRepo) List(dbc dbctx.Context, withContactInfos bool) ([]*types.Person, error) {
	q := dbc.DB(r.db).Order("last_name ASC, first_name ASC, id ASC")
	if withContactInfos {
		q = q.Preload("ContactInfos", orderContactInfos)
	}
	out := []*types.Person{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for _, p := range out {
		if p.ContactInfos == nil {
			p.ContactInfos = []types.ContactInfo{}
		}
	}
	return out, nil
}

// Delete removes the person and their contact infos together. The explicit
// child delete keeps this correct on databases created without the FK.
func (r *personRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	deleted := false
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("person_id = ?", id).Delete(&types.ContactInfo{}).Error; err != nil {
			return err
		}
		res := txx.Where("id = ?", id).Delete(&types.Person{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func orderContactInfos(db *gorm.DB) *gorm.DB {
	return db.Order("type ASC, value ASC")
}
