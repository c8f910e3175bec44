package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/kubev2v/pcap-query/api/v1alpha1"
)

type StatusReply struct {
	v1alpha1.PcapStatus
}

type ConfigurationReply struct {
	v1alpha1.PcapConfiguration
}

type PdmlReply struct {
	*v1alpha1.Pdml
}

type ErrorReply struct {
	v1alpha1.Error
	code int
}

func (s StatusReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (c ConfigurationReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (p PdmlReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.code)
	return nil
}
