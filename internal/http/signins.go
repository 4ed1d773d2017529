package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarydesk/internal/signin"
)

type SignInsController struct {
	store SignInStore
}

func NewSignInsController(store SignInStore) *SignInsController {
	return &SignInsController{store: store}
}

// RecordSignIn handles POST /api/signins
func (sc *SignInsController) RecordSignIn(c *gin.Context) {
	var in signin.SignInInput
	if !bindJSON(c, &in) {
		return
	}
	rec, err := sc.store.RecordSignIn(in.ID, in.Name, in.Role)
	if err != nil {
		respondAppError(c, err)
		return
	}
	respondCreated(c, rec)
}

// ListSignIns handles GET /api/signins
func (sc *SignInsController) ListSignIns(c *gin.Context) {
	respondList(c, sc.store.Records())
}

// Report handles GET /api/signins/report. ?format=text returns the report
// as plain text, one line per sign-in.
func (sc *SignInsController) Report(c *gin.Context) {
	switch c.DefaultQuery("format", "json") {
	case "json":
		respondList(c, sc.store.GenerateReport())
		return
	case "text":
	default:
		respondBadRequest(c, "format must be json or text")
		return
	}

	var b strings.Builder
	for line, err := range sc.store.GenerateReport() {
		if err != nil {
			respondAppError(c, err)
			return
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	c.String(http.StatusOK, b.String())
}
