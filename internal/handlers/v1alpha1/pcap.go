package v1alpha1

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kubev2v/pcap-query/api/v1alpha1"
	"github.com/kubev2v/pcap-query/internal/auth"
	"github.com/kubev2v/pcap-query/internal/handlers/v1alpha1/mappers"
)

// (POST /api/v1/pcap/fixed)
func (h *ServiceHandler) Fixed(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())

	var req v1alpha1.FixedPcapRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.pcapSrv.Fixed(r.Context(), user.Owner(), mappers.FixedRequestFromApi(req))
	if err != nil {
		zap.S().Named("pcap_handler").Errorw("failed to submit fixed query", "owner", user.Owner(), "error", err)
		renderServiceError(w, r, err)
		return
	}

	_ = render.Render(w, r, StatusReply{*status})
}

// (GET /api/v1/pcap)
func (h *ServiceHandler) GetJobStatuses(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())

	var apiState v1alpha1.JobStatus
	if err := runtime.BindQueryParameter("form", true, false, "state", r.URL.Query(), &apiState); err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid format for parameter state: %v", err))
		return
	}
	state, ok := mappers.JobStateFromApi(string(apiState))
	if !ok {
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown job state %q", apiState))
		return
	}

	statuses, err := h.pcapSrv.GetJobStatuses(r.Context(), user.Owner(), state)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, statuses)
}

// (GET /api/v1/pcap/{jobId})
func (h *ServiceHandler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.pcapSrv.GetJobStatus(r.Context(), user.Owner(), jobID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if status == nil {
		renderNotFound(w, r, jobID)
		return
	}

	_ = render.Render(w, r, StatusReply{*status})
}

// (DELETE /api/v1/pcap/kill/{jobId})
func (h *ServiceHandler) KillJob(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.pcapSrv.KillJob(r.Context(), user.Owner(), jobID)
	if err != nil {
		zap.S().Named("pcap_handler").Errorw("failed to kill job", "owner", user.Owner(), "job_id", jobID, "error", err)
		renderServiceError(w, r, err)
		return
	}
	if status == nil {
		renderNotFound(w, r, jobID)
		return
	}

	_ = render.Render(w, r, StatusReply{*status})
}

// (GET /api/v1/pcap/{jobId}/pdml)
func (h *ServiceHandler) GetPdml(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := pageParam(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.pcapSrv.GetPdml(r.Context(), user.Owner(), jobID, page)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if doc == nil {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("page %d of job %s not found", page, jobID))
		return
	}

	_ = render.Render(w, r, PdmlReply{doc})
}

// (GET /api/v1/pcap/{jobId}/raw)
func (h *ServiceHandler) GetRaw(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	page, err := pageParam(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := h.pcapSrv.GetRaw(r.Context(), user.Owner(), jobID, page)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if raw == nil {
		renderError(w, r, http.StatusNotFound, fmt.Sprintf("page %d of job %s not found", page, jobID))
		return
	}
	defer raw.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"pcap_%s_%d.pcap\"", jobID, page))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, raw); err != nil {
		zap.S().Named("pcap_handler").Errorw("failed to stream raw page", "job_id", jobID, "page", page, "error", err)
	}
}

// (GET /api/v1/pcap/{jobId}/config)
func (h *ServiceHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())
	jobID, err := jobIDParam(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.pcapSrv.GetConfiguration(r.Context(), user.Owner(), jobID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	if cfg == nil {
		renderNotFound(w, r, jobID)
		return
	}

	_ = render.Render(w, r, ConfigurationReply{*cfg})
}

func jobIDParam(r *http.Request) (string, error) {
	var jobID string
	err := runtime.BindStyledParameterWithOptions("simple", "jobId", chi.URLParam(r, "jobId"), &jobID, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter jobId: %w", err)
	}
	return jobID, nil
}

// pageParam defaults to the first page.
func pageParam(r *http.Request) (int, error) {
	page := 1
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		return 0, fmt.Errorf("invalid format for parameter page: %w", err)
	}
	return page, nil
}
