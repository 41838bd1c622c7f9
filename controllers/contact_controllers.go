package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type ContactController struct {
	Contacts *services.ContactService
}

func NewContactController(contacts *services.ContactService) *ContactController {
	return &ContactController{Contacts: contacts}
}

func (cc *ContactController) SubmitMessage(c *gin.Context) {
	var req services.ContactRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := cc.Contacts.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Thank you, we will get back to you soon", gin.H{"id": msg.ID})
}

func (cc *ContactController) ListMessages(c *gin.Context) {
	p := pagination(c)
	items, total, err := cc.Contacts.List(c.Request.Context(), c.Query("unread") == "true", p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of messages", newPage(items, total, p))
}

func (cc *ContactController) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "message_id")
	if !ok {
		return
	}
	msg, err := cc.Contacts.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Message marked as read", msg)
}

func (cc *ContactController) DeleteMessage(c *gin.Context) {
	id, ok := paramID(c, "message_id")
	if !ok {
		return
	}
	if err := cc.Contacts.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Message deleted", gin.H{"id": id})
}
