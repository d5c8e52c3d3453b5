// control/summary.go
// Author: momentics <momentics@gmail.com>
//
// Run summary encoding.

package control

import (
	"github.com/pkg/errors"
	"github.com/sugawarayuuta/sonnet"

	"github.com/momentics/stress-lb/api"
)

// EncodeSummary renders s as a single JSON document.
func EncodeSummary(s api.RunSummary) ([]byte, error) {
	b, err := sonnet.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode run summary")
	}
	return b, nil
}

// DecodeSummary parses a document produced by EncodeSummary.
func DecodeSummary(b []byte) (api.RunSummary, error) {
	var s api.RunSummary
	if err := sonnet.Unmarshal(b, &s); err != nil {
		return s, errors.Wrap(err, "decode run summary")
	}
	return s, nil
}
