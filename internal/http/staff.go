package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/staff"
)

type StaffController struct {
	store StaffStore
}

func NewStaffController(store StaffStore) *StaffController {
	return &StaffController{store: store}
}

// AddStaff handles POST /api/staff
func (sc *StaffController) AddStaff(c *gin.Context) {
	var in staff.StaffInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := sc.store.AddStaff(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondCreated(c, s)
}

// ListStaff handles GET /api/staff
func (sc *StaffController) ListStaff(c *gin.Context) {
	respondList(c, sc.store.ListStaff(c.Request.Context()))
}
