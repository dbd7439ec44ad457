package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/domain/restaurant"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/dineqr/menuhub/internal/qr"
	"github.com/gin-gonic/gin"
)

type QRStore interface {
	SaveQR(ctx context.Context, id string, png []byte, url string, generatedAt time.Time) error
	GetQRPNG(ctx context.Context, id string) ([]byte, error)
}

type QRCodeHandler struct {
	repo    QRStore
	baseURL string
}

func NewQRCodeHandler(repo QRStore, baseURL string) *QRCodeHandler {
	return &QRCodeHandler{
		repo:    repo,
		baseURL: baseURL,
	}
}

type GenerateQRRequest struct {
	Size            int    `json:"size" binding:"omitempty,min=64,max=2048"`
	ErrorCorrection string `json:"errorCorrection" binding:"omitempty,oneof=low medium high highest"`
}

// Generate encodes the restaurant's current public menu URL. Drafts can
// generate too: the QR artifact is independent of publish state, only
// scanning is gated. Regeneration overwrites the artifact and keeps the
// scan counter.
func (h *QRCodeHandler) Generate(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	var req GenerateQRRequest

	// An empty body means default options.
	if ctx.Request.ContentLength > 0 {
		if !BindJSON(ctx, &req) {
			return
		}
	}

	menuURL := restaurant.PublicMenuURL(h.baseURL, rest.Slug)

	png, err := qr.Encode(menuURL, qr.Options{
		Size:            req.Size,
		ErrorCorrection: req.ErrorCorrection,
	})

	if err != nil {
		if errors.Is(err, qr.ErrBadOptions) {
			RespondBadRequest(ctx, "Invalid QR options", nil)
			return
		}

		RespondInternal(ctx, "Could not generate QR code")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	generatedAt := time.Now().UTC()

	err = h.repo.SaveQR(cctx, rest.ID, png, menuURL, generatedAt)

	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			RespondNotFound(ctx, "Restaurant not found")
			return
		}

		RespondInternal(ctx, "Could not store QR code")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"url":         menuURL,
		"generatedAt": generatedAt,
	})
}

func (h *QRCodeHandler) Get(ctx *gin.Context) {
	rest, ok := middlewares.RestaurantFromContext(ctx)
	if !ok {
		RespondInternal(ctx, "Missing restaurant context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	png, err := h.repo.GetQRPNG(cctx, rest.ID)

	if err != nil {
		if errors.Is(err, restaurant.ErrNotFound) {
			RespondNotFound(ctx, "Restaurant not found")
			return
		}

		RespondInternal(ctx, "Could not load QR code")
		return
	}

	if len(png) == 0 {
		RespondNotFound(ctx, "QR code has not been generated yet")
		return
	}

	ctx.Header("Content-Disposition", "inline; filename=qrcode.png")
	ctx.Data(http.StatusOK, "image/png", png)
}
