// Package validation checks configuration and stage descriptors.
//
// Struct tags are checked with the validator library; field names in the
// resulting messages follow the mapstructure, yaml or json tag, in that order.
//
//	type Config struct {
//	    MaxInFlight int64 `mapstructure:"max_in_flight" validate:"gte=0,lte=65536"`
//	}
//	err := validation.Validate(cfg)
//
// Rules that depend on more than one field are collected programmatically:
//
//	v := validation.New()
//	v.Positive("timeout", c.Timeout).URL("base_url", c.BaseURL)
//	err := v.Err()
//
// Both forms return an INVALID_INPUT AppError carrying the failing fields.
package validation
