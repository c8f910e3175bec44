package pdml_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kubev2v/pcap-query/internal/pdml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func writeScript(dir, name, body string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)).To(Succeed())
	return path
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("storage went away")
}

var _ = Describe("pdml converter", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("decodes the script output", func() {
		// the script echoes its input, so the raw bytes are the pdml itself
		script := writeScript(dir, "pcap_to_pdml.sh", `[ "$1" = "page-1.pcap" ] || exit 7
cat`)

		root, err := pdml.NewConverter(script).Convert(context.TODO(), "page-1.pcap", strings.NewReader(pdmlXml))
		Expect(err).To(BeNil())

		doc, err := pdml.NewDocument(root)
		Expect(err).To(BeNil())
		Expect(doc).To(Equal(expectedPdml))
	})

	It("reports the configured script", func() {
		Expect(pdml.NewConverter("/opt/pcap/pcap_to_pdml.sh").Script()).To(Equal("/opt/pcap/pcap_to_pdml.sh"))
	})

	It("streams input larger than a pipe buffer", func() {
		script := writeScript(dir, "pcap_to_pdml.sh", "cat")

		var b bytes.Buffer
		b.WriteString(`<pdml version="0">`)
		packets := 20000
		for i := 0; i < packets; i++ {
			fmt.Fprintf(&b, `<packet><proto name="frame" pos="0" size="%d"><field name="num" show="%d"/></proto></packet>`, i, i)
		}
		b.WriteString(`</pdml>`)
		Expect(b.Len()).To(BeNumerically(">", 1<<20))

		root, err := pdml.NewConverter(script).Convert(context.TODO(), "page", &b)
		Expect(err).To(BeNil())
		Expect(root.Children).To(HaveLen(packets))
		Expect(root.Children[packets-1].Children[0].Children[0].AttrOrEmpty("show")).To(Equal(fmt.Sprintf("%d", packets-1)))
	})

	It("fails when the script does not exist", func() {
		missing := filepath.Join(dir, "missing.sh")

		_, err := pdml.NewConverter(missing).Convert(context.TODO(), "page", strings.NewReader("raw"))
		Expect(err).NotTo(BeNil())
		var execErr *pdml.ExecutionError
		Expect(errors.As(err, &execErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("no such file or directory"))
	})

	It("fails on a non zero exit", func() {
		script := writeScript(dir, "pcap_to_pdml.sh", `cat > /dev/null
echo "tshark: not a pcap file" >&2
exit 3`)

		_, err := pdml.NewConverter(script).Convert(context.TODO(), "page", strings.NewReader("raw"))
		var execErr *pdml.ExecutionError
		Expect(errors.As(err, &execErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("exit status 3"))
		Expect(err.Error()).To(ContainSubstring("not a pcap file"))
	})

	It("prefers the exit status over truncated output", func() {
		script := writeScript(dir, "pcap_to_pdml.sh", `cat > /dev/null
echo "<pdml><packet>"
exit 1`)

		_, err := pdml.NewConverter(script).Convert(context.TODO(), "page", strings.NewReader("raw"))
		var execErr *pdml.ExecutionError
		Expect(errors.As(err, &execErr)).To(BeTrue())
	})

	It("fails on malformed output", func() {
		script := writeScript(dir, "pcap_to_pdml.sh", `cat > /dev/null
echo "<pdml><packet>"`)

		_, err := pdml.NewConverter(script).Convert(context.TODO(), "page", strings.NewReader("raw"))
		var parseErr *pdml.ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
	})

	It("fails when the input cannot be read", func() {
		script := writeScript(dir, "pcap_to_pdml.sh", `cat > /dev/null
echo '<pdml version="0"/>'`)

		_, err := pdml.NewConverter(script).Convert(context.TODO(), "page", io.MultiReader(strings.NewReader("raw"), failingReader{}))
		var execErr *pdml.ExecutionError
		Expect(errors.As(err, &execErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("storage went away"))
	})

	It("stops when the context is cancelled", func() {
		script := writeScript(dir, "pcap_to_pdml.sh", "sleep 30")

		ctx, cancel := context.WithCancel(context.TODO())
		cancel()

		_, err := pdml.NewConverter(script).Convert(ctx, "page", strings.NewReader("raw"))
		var execErr *pdml.ExecutionError
		Expect(errors.As(err, &execErr)).To(BeTrue())
	})
})
