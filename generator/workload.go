package generator

import (
	"fmt"
	"time"

	"linehistory/models"
)

// FromSpec overlays the set fields of a workload's generate section on
// DefaultOptions.
func FromSpec(spec models.GenerateSpec) (Options, error) {
	opts := DefaultOptions()
	if spec.Days != nil {
		opts.Days = *spec.Days
	}
	if spec.ChatsPerDay != nil {
		opts.ChatsPerDay = *spec.ChatsPerDay
	}
	if spec.MultilineLines != nil {
		opts.MultilineLines = *spec.MultilineLines
	}
	if spec.Start != "" {
		start, err := time.Parse(time.DateOnly, spec.Start)
		if err != nil {
			return Options{}, fmt.Errorf("invalid start date %q: %w", spec.Start, err)
		}
		opts.Start = start
	}
	if spec.GroupName != "" {
		opts.GroupName = spec.GroupName
	}
	if spec.Sender != "" {
		opts.Sender = spec.Sender
	}
	if spec.Message != "" {
		opts.Message = spec.Message
	}
	if spec.CRLF {
		opts.Newline = "\r\n"
	}
	if spec.Japanese {
		opts.Weekdays = Japanese
	}
	return opts, nil
}
