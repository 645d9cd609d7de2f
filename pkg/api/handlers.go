package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/AttuneLearning/cadence-access/pkg/authz"
	"github.com/AttuneLearning/cadence-access/pkg/httputil"
	"github.com/AttuneLearning/cadence-access/pkg/navigation"
	"github.com/AttuneLearning/cadence-access/pkg/observability"
)

// Handlers holds the HTTP handlers for the access service.
type Handlers struct {
	holder  *authz.Holder
	store   *navigation.Store
	logger  *logrus.Logger
	metrics *observability.Metrics
}

// NewHandlers creates the handler set. A nil logger falls back to the logrus
// standard logger; metrics are optional.
func NewHandlers(holder *authz.Holder, store *navigation.Store, logger *logrus.Logger, metrics *observability.Metrics) *Handlers {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handlers{
		holder:  holder,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterRoutes registers all access service routes under /api/v1.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	v1 := router.PathPrefix("/api/v1").Subrouter()

	// Permission context
	v1.HandleFunc("/auth-context", h.PutAuthContext).Methods("PUT")
	v1.HandleFunc("/auth-context", h.DeleteAuthContext).Methods("DELETE")
	v1.HandleFunc("/permissions/check", h.CheckPermission).Methods("GET")
	v1.HandleFunc("/departments/{id}/rights", h.GetDepartmentRights).Methods("GET")
	v1.HandleFunc("/departments/{id}/roles", h.GetDepartmentRoles).Methods("GET")

	// Navigation
	v1.HandleFunc("/navigation/state", h.GetNavigationState).Methods("GET")
	v1.HandleFunc("/navigation/switch", h.SwitchDepartment).Methods("POST")
	v1.HandleFunc("/navigation/navigate", h.Navigate).Methods("POST")
	v1.HandleFunc("/navigation/up", h.NavigateUp).Methods("POST")
	v1.HandleFunc("/navigation/clear", h.ClearDepartmentPath).Methods("POST")
	v1.HandleFunc("/navigation/sidebar", h.PutSidebar).Methods("PUT")
	v1.HandleFunc("/navigation/breadcrumb-mode/toggle", h.ToggleBreadcrumbMode).Methods("POST")
}

// PutAuthContext installs a new permission context. The context must be
// internally consistent and carry a permission version newer than the one
// currently held.
func (h *Handlers) PutAuthContext(w http.ResponseWriter, r *http.Request) {
	var ctx authz.Context
	if !httputil.ParseJSONOrError(w, r, &ctx) {
		return
	}

	resolver, err := h.holder.Replace(&ctx)
	if err != nil {
		if errors.Is(err, authz.ErrStaleContext) {
			httputil.WriteConflict(w, err.Error())
			return
		}
		h.logger.WithError(err).Warn("Rejected auth context")
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.AuthContextVersion.Set(float64(resolver.PermissionVersion()))
	}
	h.logger.WithFields(logrus.Fields{
		"userId":            ctx.UserID,
		"permissionVersion": ctx.PermissionVersion,
	}).Info("Auth context installed")

	httputil.WriteSuccess(w, map[string]interface{}{
		"userId":            ctx.UserID,
		"permissionVersion": ctx.PermissionVersion,
	})
}

// DeleteAuthContext clears the held permission context and the department
// selection. Remembered departments survive, so the next login can restore
// the user's place.
func (h *Handlers) DeleteAuthContext(w http.ResponseWriter, r *http.Request) {
	h.holder.Clear()
	h.store.ClearDepartmentSelection()
	if h.metrics != nil {
		h.metrics.AuthContextVersion.Set(0)
	}
	httputil.WriteNoContent(w)
}

// CheckPermission answers whether the current user holds a right. With a
// departmentId query parameter the check is department-scoped, including
// inherited rights; without one only global rights count.
func (h *Handlers) CheckPermission(w http.ResponseWriter, r *http.Request) {
	right := httputil.ParseQueryString(r, "right", "")
	if !httputil.RequireNonEmpty(w, right, "right") {
		return
	}
	deptID := httputil.ParseQueryString(r, "departmentId", "")

	resolver, err := h.holder.Resolver()
	if err != nil {
		h.observeCheck("error")
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	var allowed bool
	if deptID == "" {
		allowed = resolver.HasGlobalRight(right)
	} else {
		allowed, err = resolver.HasRightInDepartment(deptID, right)
		if err != nil {
			h.observeCheck("error")
			h.logger.WithError(err).WithField("departmentId", deptID).Error("Permission check failed")
			httputil.WriteInternalError(w, err)
			return
		}
	}

	if allowed {
		h.observeCheck("allowed")
	} else {
		h.observeCheck("denied")
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"right":        right,
		"departmentId": deptID,
		"allowed":      allowed,
	})
}

// GetDepartmentRights returns the full effective right set for a department,
// inherited rights included.
func (h *Handlers) GetDepartmentRights(w http.ResponseWriter, r *http.Request) {
	deptID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	resolver, err := h.holder.Resolver()
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	rights, err := resolver.EffectiveRights(deptID)
	if err != nil {
		h.logger.WithError(err).WithField("departmentId", deptID).Error("Right resolution failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"departmentId": deptID,
		"rights":       rights,
	})
}

// GetDepartmentRoles returns the roles held directly in a department. Roles
// do not inherit.
func (h *Handlers) GetDepartmentRoles(w http.ResponseWriter, r *http.Request) {
	deptID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	resolver, err := h.holder.Resolver()
	if err != nil {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"departmentId": deptID,
		"roles":        resolver.RolesInDepartment(deptID),
	})
}

// GetNavigationState returns a snapshot of the navigation store.
func (h *Handlers) GetNavigationState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, h.store.Snapshot())
}

type switchRequest struct {
	DepartmentID string   `json:"departmentId"`
	UserID       string   `json:"userId,omitempty"`
	Ancestors    []string `json:"ancestors,omitempty"`
}

// SwitchDepartment switches the session into a department, updates the
// breadcrumb path, and remembers the department for the user when a userId
// is supplied.
func (h *Handlers) SwitchDepartment(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.DepartmentID, "departmentId") {
		return
	}

	result, err := h.store.SwitchDepartment(r.Context(), req.DepartmentID)
	if err != nil {
		httputil.WriteErrorMessage(w, switchErrorStatus(err), err.Error())
		return
	}

	h.store.NavigateToDepartment(req.DepartmentID, req.Ancestors)
	if req.UserID != "" {
		h.store.RememberDepartment(r.Context(), req.UserID, req.DepartmentID)
	}

	httputil.WriteSuccess(w, result)
}

// switchErrorStatus maps a department service failure onto a response code.
// The upstream error text is the only signal available.
func switchErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "does not exist"):
		return http.StatusNotFound
	case strings.Contains(msg, "not a member"):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

type navigateRequest struct {
	DepartmentID string   `json:"departmentId"`
	Ancestors    []string `json:"ancestors,omitempty"`
}

// Navigate moves the breadcrumb path to a department without a switch
// round-trip.
func (h *Handlers) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.DepartmentID, "departmentId") {
		return
	}

	h.store.NavigateToDepartment(req.DepartmentID, req.Ancestors)
	httputil.WriteSuccess(w, h.store.Snapshot())
}

// NavigateUp steps one breadcrumb level toward the root.
func (h *Handlers) NavigateUp(w http.ResponseWriter, r *http.Request) {
	h.store.NavigateUp()
	httputil.WriteSuccess(w, h.store.Snapshot())
}

// ClearDepartmentPath drops the breadcrumb path and the selection.
func (h *Handlers) ClearDepartmentPath(w http.ResponseWriter, r *http.Request) {
	h.store.ClearDepartmentPath()
	httputil.WriteSuccess(w, h.store.Snapshot())
}

type sidebarRequest struct {
	Open bool `json:"open"`
}

// PutSidebar sets the sidebar open state.
func (h *Handlers) PutSidebar(w http.ResponseWriter, r *http.Request) {
	var req sidebarRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	h.store.SetSidebarOpen(req.Open)
	httputil.WriteNoContent(w)
}

// ToggleBreadcrumbMode flips and persists the breadcrumb mode flag.
func (h *Handlers) ToggleBreadcrumbMode(w http.ResponseWriter, r *http.Request) {
	mode := h.store.ToggleBreadcrumbMode(r.Context())
	httputil.WriteSuccess(w, map[string]bool{"isBreadcrumbMode": mode})
}

func (h *Handlers) observeCheck(result string) {
	if h.metrics != nil {
		h.metrics.ObservePermissionCheck(result)
	}
}
