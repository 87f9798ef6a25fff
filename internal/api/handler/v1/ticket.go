package v1

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumina-events/invitation-api/internal/api/handler/v1/response"
	"github.com/lumina-events/invitation-api/internal/pkg/qr"
	"github.com/lumina-events/invitation-api/internal/pkg/ticketid"
)

const qrSize = 320

// HandleTicketQR godoc
// @Summary      QR code of a ticket
// @Description  The image only encodes the ID, so it is served without a lookup.
// @Tags         tickets
// @Produce      png
// @Param        ticketID  path      string  true  "ticket ID"
// @Success      200
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tickets/{ticketID}/qr.png [get]
func HandleTicketQR(ctx *gin.Context) {
	ticketID := strings.ToUpper(ctx.Param("ticketID"))
	if !ticketid.Valid(ticketID) {
		response.RenderErr(ctx, response.ErrNotFound("ticket", "id", ticketID))
		return
	}

	png, err := qr.Encode(ticketID, qrSize)
	if err != nil {
		err = fmt.Errorf("v1.HandleTicketQR -> qr.Encode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(http.StatusOK, "image/png", png)
}
