package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/kubev2v/pcap-query/api/v1alpha1"
)

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func registerStructFn(fn func(sl validator.StructLevel), types ...any) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		v.RegisterStructValidation(fn, types...)
	}
}

func NewPcapValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("ip_addr", ipAddrValidator),
		},
		{
			Rule: registerFn("protocol", protocolValidator),
		},
		{
			Rule: registerFn("packet_filter", packetFilterValidator),
		},
		{
			Rule: registerStructFn(timeWindowValidator, v1alpha1.FixedPcapRequest{}),
		},
	}
}
