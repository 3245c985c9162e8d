package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/madina-markt/api/internal/platform/httpx"
	"github.com/madina-markt/api/internal/platform/storage"
	"github.com/madina-markt/api/internal/services"
)

const maxAssetBodySize = 8 * 1024

// AssetHandlers issues signed URLs for catalog image uploads and downloads.
type AssetHandlers struct {
	assets services.AssetService
}

// NewAssetHandlers constructs the asset handlers.
func NewAssetHandlers(assets services.AssetService) *AssetHandlers {
	return &AssetHandlers{assets: assets}
}

// Routes wires the asset endpoints onto the /admin group. The colon action
// segment is a single literal path element, so chi routes it directly.
func (h *AssetHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/assets:sign-upload", h.signUpload)
	r.Post("/assets:sign-download", h.signDownload)
}

func assetKindFromString(raw string) (storage.AssetKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "product", "product-image":
		return storage.AssetKindProductImage, true
	case "offer", "offer-image":
		return storage.AssetKindOfferImage, true
	case "category", "category-image":
		return storage.AssetKindCategoryImage, true
	default:
		return "", false
	}
}

type signUploadRequest struct {
	Kind        string `json:"kind"`
	OwnerID     string `json:"ownerId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	ContentMD5  string `json:"contentMd5"`
}

type signDownloadRequest struct {
	Kind     string `json:"kind"`
	OwnerID  string `json:"ownerId"`
	FileName string `json:"fileName"`
}

type signedAssetPayload struct {
	AssetID   string            `json:"assetId"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	ExpiresAt string            `json:"expiresAt"`
	Headers   map[string]string `json:"headers,omitempty"`
}

func (h *AssetHandlers) signUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req signUploadRequest
	if !decodeAssetRequest(ctx, w, r, &req) {
		return
	}
	kind, ok := assetKindFromString(req.Kind)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "kind must be product, offer, or category", http.StatusBadRequest))
		return
	}

	signed, err := h.assets.SignUpload(ctx, services.SignUploadCommand{
		Kind:        kind,
		OwnerID:     req.OwnerID,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		ContentMD5:  req.ContentMD5,
	})
	if err != nil {
		writeAssetError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSignedAssetPayload(signed))
}

func (h *AssetHandlers) signDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req signDownloadRequest
	if !decodeAssetRequest(ctx, w, r, &req) {
		return
	}
	kind, ok := assetKindFromString(req.Kind)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "kind must be product, offer, or category", http.StatusBadRequest))
		return
	}

	signed, err := h.assets.SignDownload(ctx, services.SignDownloadCommand{
		Kind:     kind,
		OwnerID:  req.OwnerID,
		FileName: req.FileName,
	})
	if err != nil {
		writeAssetError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSignedAssetPayload(signed))
}

func buildSignedAssetPayload(signed services.SignedAssetResponse) signedAssetPayload {
	return signedAssetPayload{
		AssetID:   signed.AssetID,
		URL:       signed.URL,
		Method:    signed.Method,
		ExpiresAt: formatTimestamp(signed.ExpiresAt),
		Headers:   signed.Headers,
	}
}

func decodeAssetRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := readLimitedBody(r, maxAssetBodySize)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed JSON body", http.StatusBadRequest))
		return false
	}
	return true
}

func writeAssetError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAssetInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrAssetUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "asset signing backend is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "unexpected asset failure", http.StatusInternalServerError))
	}
}
