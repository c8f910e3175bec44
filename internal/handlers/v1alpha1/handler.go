package v1alpha1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/kubev2v/pcap-query/api/v1alpha1"
	"github.com/kubev2v/pcap-query/internal/handlers/validator"
	"github.com/kubev2v/pcap-query/internal/service"
	"github.com/kubev2v/pcap-query/pkg/requestid"
)

type ServiceHandler struct {
	pcapSrv   *service.PcapService
	validator *validator.Validator
}

func NewServiceHandler(pcapSrv *service.PcapService) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewPcapValidationRules()...)
	return &ServiceHandler{pcapSrv: pcapSrv, validator: v}
}

func (h *ServiceHandler) RegisterApi(router chi.Router) {
	router.Route("/api/v1/pcap", func(r chi.Router) {
		r.Post("/fixed", h.Fixed)
		r.Get("/", h.GetJobStatuses)
		r.Get("/{jobId}", h.GetJobStatus)
		r.Delete("/kill/{jobId}", h.KillJob)
		r.Get("/{jobId}/pdml", h.GetPdml)
		r.Get("/{jobId}/raw", h.GetRaw)
		r.Get("/{jobId}/config", h.GetConfiguration)
	})
}

func renderError(w http.ResponseWriter, r *http.Request, code int, message string) {
	_ = render.Render(w, r, ErrorReply{
		Error: v1alpha1.Error{Message: message, RequestId: requestid.FromContextPtr(r.Context())},
		code:  code,
	})
}

func renderNotFound(w http.ResponseWriter, r *http.Request, jobID string) {
	renderError(w, r, http.StatusNotFound, fmt.Sprintf("job %s not found", jobID))
}

// renderServiceError maps a pcap service error onto its http status.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var pcapErr *service.ErrPcap
	if errors.As(err, &pcapErr) && pcapErr.Kind == service.ValidationFailure {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	renderError(w, r, http.StatusInternalServerError, err.Error())
}
