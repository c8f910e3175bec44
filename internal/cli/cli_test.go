package cli_test

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/kubev2v/pcap-query/internal/auth"
	"github.com/kubev2v/pcap-query/internal/cli"
	"github.com/kubev2v/pcap-query/internal/filter"
	handlers "github.com/kubev2v/pcap-query/internal/handlers/v1alpha1"
	"github.com/kubev2v/pcap-query/internal/job"
	"github.com/kubev2v/pcap-query/internal/job/jobtest"
	"github.com/kubev2v/pcap-query/internal/pdml"
	"github.com/kubev2v/pcap-query/internal/service"
	"github.com/kubev2v/pcap-query/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("pcap cli", func() {
	var (
		dir     string
		ts      *httptest.Server
		factory *jobtest.MockFactory
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		script := filepath.Join(dir, "pcap_to_pdml.sh")
		Expect(os.WriteFile(script, []byte("#!/bin/sh\ncat\n"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "page-1.pcap"), []byte(`<pdml version="0"><packet/></pdml>`), 0o644)).To(Succeed())

		factory = jobtest.NewMockFactory()
		srv := service.NewPcapService(
			job.NewManager(factory),
			storage.NewLocalStorage(dir),
			pdml.NewConverter(script),
			filter.Defaults{BasePath: "/base", NumReducers: 10, PageSize: 10},
		)

		authenticator, err := auth.NewNoneAuthenticator(auth.DefaultOwner)
		Expect(err).To(BeNil())
		router := chi.NewRouter()
		router.Use(authenticator.Authenticator)
		handlers.NewServiceHandler(srv).RegisterApi(router)

		ts = httptest.NewServer(router)
	})

	AfterEach(func() {
		ts.Close()
	})

	run := func(cmd *cobra.Command, args ...string) (string, error) {
		out := new(bytes.Buffer)
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append(args, "--server-url", ts.URL))
		err := cmd.Execute()
		return out.String(), err
	}

	It("submits a query and lists it", func() {
		factory.Push(jobtest.NewMockJob("job_1"))

		out, err := run(cli.NewCmdFixed(), "--ip-src-addr", "10.0.0.1", "--ip-src-port", "80")
		Expect(err).To(BeNil())
		Expect(out).To(ContainSubstring("job_1"))
		Expect(out).To(ContainSubstring("RUNNING"))

		cfg := factory.Created()[0].Config()
		Expect(cfg.Predicate.Map()).To(Equal(map[string]string{"ip_src_addr": "10.0.0.1", "ip_src_port": "80"}))

		out, err = run(cli.NewCmdGet(), "-o", "yaml")
		Expect(err).To(BeNil())
		Expect(out).To(ContainSubstring("jobId: job_1"))
	})

	It("rejects unknown output formats", func() {
		_, err := run(cli.NewCmdGet(), "-o", "xml")
		Expect(err).To(MatchError(ContainSubstring("output format must be one of")))
	})

	It("reports missing jobs", func() {
		_, err := run(cli.NewCmdKill(), "missing")
		Expect(err).To(MatchError(ContainSubstring("killing job/missing")))
	})

	It("downloads a raw page", func() {
		j := jobtest.NewMockJob("job_1")
		factory.Push(j)
		_, err := run(cli.NewCmdFixed())
		Expect(err).To(BeNil())
		j.Succeed(job.Pages{"page-1.pcap"})

		target := filepath.Join(dir, "out.pcap")
		out, err := run(cli.NewCmdRaw(), "job_1", "--file", target)
		Expect(err).To(BeNil())
		Expect(out).To(ContainSubstring("written to " + target))

		data, err := os.ReadFile(target)
		Expect(err).To(BeNil())
		Expect(string(data)).To(HavePrefix("<pdml"))

		out, err = run(cli.NewCmdPdml(), "job_1", "--page", "1")
		Expect(err).To(BeNil())
		Expect(out).To(ContainSubstring(`"packets"`))
	})
})
