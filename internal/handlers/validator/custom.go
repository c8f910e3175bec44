package validator

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kubev2v/pcap-query/api/v1alpha1"
)

var protocolNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func ipAddrValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return net.ParseIP(val) != nil
}

// protocolValidator accepts an IANA protocol number or a lower case protocol name.
func protocolValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if n, err := strconv.Atoi(val); err == nil {
		return n >= 0 && n <= 255
	}
	return protocolNameRegex.MatchString(val)
}

func packetFilterValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if strings.TrimSpace(val) == "" {
		return false
	}
	return strings.IndexFunc(val, unicode.IsControl) < 0
}

func timeWindowValidator(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(v1alpha1.FixedPcapRequest)
	if !ok {
		return
	}
	if req.StartTimeMs != nil && req.EndTimeMs != nil && *req.StartTimeMs > *req.EndTimeMs {
		sl.ReportError(req.EndTimeMs, "endTimeMs", "EndTimeMs", "time_window", "")
	}
}
