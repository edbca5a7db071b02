package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/repos"
	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/dbctx"
	pkgerrors "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/errors"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type CreatePersonInput struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Company   *string `json:"company"`
}

type AddContactInput struct {
	Type  types.ContactType `json:"type"`
	Value string            `json:"value"`
}

type PersonService interface {
	Create(ctx context.Context, in CreatePersonInput) (*types.Person, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Person, error)
	// List returns every person; with full set their contact infos are
	// loaded too, which is the listing report workers read.
	List(ctx context.Context, full bool) ([]*types.Person, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddContact(ctx context.Context, personID uuid.UUID, in AddContactInput) (*types.ContactInfo, error)
	RemoveContact(ctx context.Context, personID, contactID uuid.UUID) error
}

type personService struct {
	log      *logger.Logger
	people   repos.PersonRepo
	contacts repos.ContactInfoRepo
}

func NewPersonService(log *logger.Logger, people repos.PersonRepo, contacts repos.ContactInfoRepo) PersonService {
	return &personService{
		log:      log.With("service", "PersonService"),
		people:   people,
		contacts: contacts,
	}
}

// Column sizes of the person and contact_info tables, in characters.
const (
	maxNameLength    = 100
	maxCompanyLength = 200
	maxValueLength   = 200
)

func tooLong(s string, max int) bool { return utf8.RuneCountInString(s) > max }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", pkgerrors.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func (s *personService) Create(ctx context.Context, in CreatePersonInput) (*types.Person, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, invalid("firstName and lastName are required")
	}
	if tooLong(first, maxNameLength) || tooLong(last, maxNameLength) {
		return nil, invalid("firstName and lastName may be at most %d characters", maxNameLength)
	}
	var company *string
	if in.Company != nil {
		if c := strings.TrimSpace(*in.Company); c != "" {
			if tooLong(c, maxCompanyLength) {
				return nil, invalid("company may be at most %d characters", maxCompanyLength)
			}
			company = &c
		}
	}
	p, err := s.people.Create(dbctx.Context{Ctx: ctx}, &types.Person{FirstName: first, LastName: last, Company: company})
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	s.log.Info("Person created", "person_id", p.ID)
	return p, nil
}

func (s *personService) Get(ctx context.Context, id uuid.UUID) (*types.Person, error) {
	p, err := s.people.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return p, nil
}

func (s *personService) List(ctx context.Context, full bool) ([]*types.Person, error) {
	return s.people.List(dbctx.Context{Ctx: ctx}, full)
}

func (s *personService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.people.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	if !ok {
		return pkgerrors.ErrNotFound
	}
	s.log.Info("Person deleted", "person_id", id)
	return nil
}

func (s *personService) AddContact(ctx context.Context, personID uuid.UUID, in AddContactInput) (*types.ContactInfo, error) {
	if !in.Type.Valid() {
		return nil, invalid("type must be one of Phone, Email, Location")
	}
	value := strings.TrimSpace(in.Value)
	if value == "" {
		return nil, invalid("value is required")
	}
	if tooLong(value, maxValueLength) {
		return nil, invalid("value may be at most %d characters", maxValueLength)
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := s.people.GetByID(dbc, personID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, pkgerrors.ErrNotFound
	}
	info, err := s.contacts.Create(dbc, &types.ContactInfo{PersonID: personID, Type: in.Type, Value: value})
	if err != nil {
		return nil, fmt.Errorf("add contact: %w", err)
	}
	s.log.Info("Contact added", "person_id", personID, "contact_id", info.ID, "type", info.Type)
	return info, nil
}

func (s *personService) RemoveContact(ctx context.Context, personID, contactID uuid.UUID) error {
	ok, err := s.contacts.Delete(dbctx.Context{Ctx: ctx}, personID, contactID)
	if err != nil {
		return fmt.Errorf("remove contact: %w", err)
	}
	if !ok {
		return pkgerrors.ErrNotFound
	}
	return nil
}
