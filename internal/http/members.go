package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/membership"
)

// MembersController serves members and memberships.
type MembersController struct {
	store MemberStore
}

func NewMembersController(store MemberStore) *MembersController {
	return &MembersController{store: store}
}

type AddMemberRequest struct {
	membership.MemberInput
	DurationMonths int `json:"duration_months"`
}

type MemberResponse struct {
	Member     *entities.Member     `json:"member"`
	Membership *entities.Membership `json:"membership,omitempty"`
	Created    bool                 `json:"created"`
}

// AddMember handles POST /api/members
func (mc *MembersController) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	member, ms, err := mc.store.AddMember(c.Request.Context(), req.MemberInput, req.DurationMonths)
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondCreated(c, MemberResponse{Member: member, Membership: ms, Created: true})
}

// EnsureMember handles PUT /api/members/:id. An existing member is
// returned unchanged with 200; a new one is registered with 201.
func (mc *MembersController) EnsureMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in membership.MemberInput
	if !bindJSON(c, &in) {
		return
	}
	in.MemberID = id

	member, created, err := mc.store.EnsureMember(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, MemberResponse{Member: member, Created: created})
}

// ListMembers handles GET /api/members
func (mc *MembersController) ListMembers(c *gin.Context) {
	respondList(c, mc.store.ListMembers(c.Request.Context()))
}

// CreateMembership handles POST /api/memberships
func (mc *MembersController) CreateMembership(c *gin.Context) {
	var in membership.MembershipInput
	if !bindJSON(c, &in) {
		return
	}
	ms, err := mc.store.CreateMembership(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondCreated(c, ms)
}

// GetMembership handles GET /api/memberships/:memberId
func (mc *MembersController) GetMembership(c *gin.Context) {
	id, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}
	ms, err := mc.store.GetMembershipDetails(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}

// CancelMembership handles POST /api/memberships/:memberId/cancel
func (mc *MembersController) CancelMembership(c *gin.Context) {
	id, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}
	ms, err := mc.store.CancelMembership(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}

// RenewMembership handles POST /api/memberships/:memberId/renew
func (mc *MembersController) RenewMembership(c *gin.Context) {
	id, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}
	ms, err := mc.store.RenewMembership(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}
