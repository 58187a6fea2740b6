package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/events"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// ContactInput carries validated contact fields.
type ContactInput struct {
	Name  string
	DDD   string
	Phone string
	Email string
}

// ContactService manages directory entries.
type ContactService struct {
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewContactService constructs the service. Dispatcher and logger may be nil.
func NewContactService(contacts repository.ContactRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{contacts: contacts, dispatcher: dispatcher, logger: logger}
}

// Create stores a new contact.
func (s *ContactService) Create(ctx context.Context, caller *auth.Principal, in ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{Name: in.Name, DDD: in.DDD, Phone: in.Phone, Email: in.Email}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.EventContactCreated, caller, contact)
	return contact, nil
}

// Get returns a contact by id.
func (s *ContactService) Get(ctx context.Context, id int64) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "contact", id)
	}
	return contact, nil
}

// List returns contacts, optionally restricted to one area code.
func (s *ContactService) List(ctx context.Context, filter repository.ContactFilter) ([]domain.Contact, error) {
	contacts, err := s.contacts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return contacts, nil
}

// Update replaces every field of an existing contact.
func (s *ContactService) Update(ctx context.Context, caller *auth.Principal, id int64, in ContactInput) (*domain.Contact, error) {
	contact := &domain.Contact{ID: id, Name: in.Name, DDD: in.DDD, Phone: in.Phone, Email: in.Email}
	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, notFoundOr(err, "contact", id)
	}
	s.publish(ctx, events.EventContactUpdated, caller, contact)
	return contact, nil
}

// Delete removes a contact and returns what was removed.
func (s *ContactService) Delete(ctx context.Context, caller *auth.Principal, id int64) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "contact", id)
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return nil, notFoundOr(err, "contact", id)
	}
	s.publish(ctx, events.EventContactDeleted, caller, contact)
	return contact, nil
}

func (s *ContactService) publish(ctx context.Context, eventType events.EventType, caller *auth.Principal, contact *domain.Contact) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, actorOf(caller), events.ContactChangedPayload{
		ContactID: contact.ID,
		Name:      contact.Name,
		DDD:       contact.DDD,
	})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("contact event subscribers failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
