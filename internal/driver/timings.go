package driver

import (
	"encoding/json"
	"fmt"

	"lazyres/internal/diag"
	"lazyres/internal/observ"
	"lazyres/internal/source"
)

type timingPayload struct {
	Kind    string              `json:"kind"`
	Path    string              `json:"path,omitempty"`
	TotalMS float64             `json:"total_ms"`
	Phases  []observ.StepReport `json:"phases"`
}

// AppendTimings records a timing summary as an informational diagnostic
// whose note carries the JSON form.
func AppendTimings(bag *diag.Bag, kind string, report observ.Report) {
	appendTimingDiagnostic(bag, timingPayload{Kind: kind, TotalMS: report.TotalMS, Phases: report.Steps})
}

func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "resolve"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s, %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
