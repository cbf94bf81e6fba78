package driver

import (
	"encoding/json"
	"fmt"

	"kernelabi/internal/diag"
	"kernelabi/internal/observ"
)

// timingPayload is the JSON note of an ObsTimings diagnostic.
type timingPayload struct {
	Path     string               `json:"path,omitempty"`
	Session  string               `json:"session"`
	TotalMS  float64              `json:"total_ms"`
	Phases   []observ.PhaseReport `json:"phases"`
	Entries  int                  `json:"entries"`
	Promoted int                  `json:"promoted"`
	Frames   int                  `json:"frames"`
}

func (s *Session) timingPayload(res *Result) timingPayload {
	return timingPayload{
		Path:     res.Path,
		Session:  s.ID.String(),
		TotalMS:  res.Timing.TotalMS,
		Phases:   res.Timing.Phases,
		Entries:  len(res.Entries),
		Promoted: res.Promote.Promoted,
		Frames:   len(res.Frames),
	}
}

// appendTimingDiagnostic adds the timing report even when the bag is at
// its limit.
func appendTimingDiagnostic(bag *diag.Bag, p timingPayload) {
	if bag == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("%d phases in %.2f ms", len(p.Phases), p.TotalMS)
	d := diag.New(diag.SevInfo, diag.ObsTimings, diag.Loc{Inst: -1}, msg).
		WithNote(diag.Loc{Inst: -1}, string(data))
	if bag.Add(d) {
		return
	}
	extra := diag.NewBag(1)
	extra.Add(d)
	bag.Merge(extra)
}
