package http

import (
	"net/http"
	"time"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/service"
	"github.com/harborline/bms/pkg/httpx"
)

// BusinessHandler serves business and personnel management endpoints.
type BusinessHandler struct {
	Businesses *service.BusinessService
}

type businessResponse struct {
	ID          string    `json:"id"`
	Role        string    `json:"role,omitempty"` // caller's role, on detail reads
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBusinessResponse(b domain.Business) businessResponse {
	return businessResponse{
		ID:          b.ID,
		Name:        b.Name,
		Category:    b.Category,
		Description: b.Description,
		Address:     b.Address,
		Phone:       b.Phone,
		Email:       b.Email,
		CreatedAt:   b.CreatedAt,
	}
}

// businessRequest is shared by create and update.
type businessRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func (req businessRequest) toDomain(id string) domain.Business {
	return domain.Business{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
	}
}

type memberResponse struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type businessSummaryResponse struct {
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
}

func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	biz, err := h.Businesses.Create(ctx, httpx.UserIDFromCtx(ctx), req.toDomain(""))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "Business created.", toBusinessResponse(biz))
}

func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	biz, role, err := h.Businesses.Get(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := toBusinessResponse(biz)
	resp.Role = string(role)
	writeOK(w, "", resp)
}

func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req businessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	err := h.Businesses.Update(ctx, httpx.UserIDFromCtx(ctx), req.toDomain(r.PathValue("id")))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Business updated.", nil)
}

func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Businesses.Delete(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Business deleted.", nil)
}

func (h *BusinessHandler) Activate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Businesses.SetActive(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Active business updated.", nil)
}

func (h *BusinessHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summaries, err := h.Businesses.ListMine(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]businessSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, businessSummaryResponse{
			BusinessID: s.BusinessID,
			Name:       s.Name,
			Role:       string(s.Role),
			JoinedAt:   s.JoinedAt,
		})
	}
	writeOK(w, "", out)
}

func (h *BusinessHandler) Members(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, err := h.Businesses.Members(ctx, httpx.UserIDFromCtx(ctx), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			UserID:   m.UserID,
			Username: m.Username,
			Email:    m.Email,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	writeOK(w, "", out)
}

func (h *BusinessHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"` // username or email
		Role       string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	err := h.Businesses.AddMember(ctx,
		httpx.UserIDFromCtx(ctx), r.PathValue("id"), req.Identifier, domain.BusinessRole(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "Member added.", nil)
}

func (h *BusinessHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.Businesses.RemoveMember(ctx,
		httpx.UserIDFromCtx(ctx), r.PathValue("id"), r.PathValue("userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Member removed.", nil)
}
