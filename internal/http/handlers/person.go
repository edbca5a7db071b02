package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/http/response"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/services"
)

type PersonHandler struct {
	people services.PersonService
}

func NewPersonHandler(people services.PersonService) *PersonHandler {
	return &PersonHandler{people: people}
}

func parseID(c *gin.Context, param, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}

// POST /api/people
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var in services.CreatePersonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	p, err := h.people.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Location", "/api/people/"+p.ID.String())
	c.JSON(http.StatusCreated, p)
}

// GET /api/people
func (h *PersonHandler) ListPeople(c *gin.Context) {
	h.list(c, false)
}

// GET /api/people/full
func (h *PersonHandler) ListPeopleFull(c *gin.Context) {
	h.list(c, true)
}

func (h *PersonHandler) list(c *gin.Context, full bool) {
	people, err := h.people.List(c.Request.Context(), full)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, people)
}

// GET /api/people/:id
func (h *PersonHandler) GetPerson(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_person_id")
	if !ok {
		return
	}
	p, err := h.people.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, p)
}

// DELETE /api/people/:id
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_person_id")
	if !ok {
		return
	}
	if err := h.people.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/people/:id/contacts
func (h *PersonHandler) AddContact(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_person_id")
	if !ok {
		return
	}
	var in services.AddContactInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	info, err := h.people.AddContact(c.Request.Context(), id, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// DELETE /api/people/:id/contacts/:contactId
func (h *PersonHandler) RemoveContact(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid_person_id")
	if !ok {
		return
	}
	contactID, ok := parseID(c, "contactId", "invalid_contact_id")
	if !ok {
		return
	}
	if err := h.people.RemoveContact(c.Request.Context(), id, contactID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
