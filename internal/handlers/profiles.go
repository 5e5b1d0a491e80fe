package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-management-server/internal/store"
	"hospital-management-server/internal/utils"
)

// ProfileHandler handles profile directory lookups.
type ProfileHandler struct {
	Store *store.Store
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{Store: s}
}

// Doctors lists doctor profiles for appointment booking.
func (h *ProfileHandler) Doctors(c *gin.Context) {
	doctors, err := h.Store.GetDoctors(c.Request.Context())
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Doctors fetched successfully", doctors)
}
