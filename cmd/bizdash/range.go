package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goliatone/go-bizdash/components/daterange"
)

type rangeCmd struct {
	Selector string `arg:"" optional:"" help:"Selector id (today, last_30_days, this_month...). Empty lists every selector."`
	At       string `help:"Reference time as RFC 3339 (defaults to now)."`
	TZ       string `name:"tz" help:"IANA time zone used for calendar boundaries."`
	JSON     bool   `help:"Print JSON instead of text."`

	out io.Writer
}

type rangeOutput struct {
	Selector  daterange.Selector `json:"selector"`
	Label     string             `json:"label"`
	StartDate string             `json:"startDate"`
	EndDate   string             `json:"endDate"`
	Days      int                `json:"days"`
	Fallback  bool               `json:"fallback,omitempty"`
}

func (cmd *rangeCmd) Run() error {
	now := time.Now()
	if cmd.At != "" {
		at, err := time.Parse(time.RFC3339, cmd.At)
		if err != nil {
			return fmt.Errorf("range: parse --at: %w", err)
		}
		now = at
	}
	if cmd.TZ != "" {
		loc, err := time.LoadLocation(cmd.TZ)
		if err != nil {
			return fmt.Errorf("range: load tz: %w", err)
		}
		now = now.In(loc)
	}

	selectors := daterange.Selectors()
	if cmd.Selector != "" {
		selectors = []daterange.Selector{daterange.Selector(cmd.Selector)}
	}
	outputs := make([]rangeOutput, 0, len(selectors))
	for _, sel := range selectors {
		_, known := daterange.Parse(string(sel))
		r := daterange.Resolve(string(sel), now)
		iso := r.ISO()
		outputs = append(outputs, rangeOutput{
			Selector:  r.Selector,
			Label:     r.Label(),
			StartDate: iso.StartDate,
			EndDate:   iso.EndDate,
			Days:      r.Days(),
			Fallback:  !known,
		})
	}
	return cmd.print(outputs)
}

func (cmd *rangeCmd) print(outputs []rangeOutput) error {
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	if cmd.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}
	for _, o := range outputs {
		note := ""
		if o.Fallback {
			note = " (unknown selector, using default)"
		}
		fmt.Fprintf(out, "%-14s %-15s %s .. %s (%d days)%s\n", o.Selector, o.Label, o.StartDate, o.EndDate, o.Days, note)
	}
	return nil
}
