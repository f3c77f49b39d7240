package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-bizdash/components/format"
)

type formatCmd struct {
	Kind     string `arg:"" enum:"currency,compact,number,percentage,change,date,relative" help:"Formatter to apply (${enum})."`
	Value    string `arg:"" help:"Value to format. Non-numeric values render the placeholder."`
	Currency string `default:"USD" help:"ISO currency code for currency kinds."`
	Decimals int    `default:"2" help:"Fraction digits for number kinds."`
	Layout   string `default:"Jan 2, 2006" help:"Go layout for dates."`
	Locale   string `default:"en" help:"Locale for month and day names."`

	out io.Writer
}

func (cmd *formatCmd) Run() error {
	out := cmd.out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, cmd.render(time.Now()))
	return err
}

func (cmd *formatCmd) render(now time.Time) string {
	switch cmd.Kind {
	case "date":
		return format.DateLocale(cmd.Value, cmd.Layout, cmd.Locale)
	case "relative":
		return format.RelativeTimeFrom(cmd.Value, now)
	}
	value := parseNumber(cmd.Value)
	switch cmd.Kind {
	case "currency":
		return format.Currency(value, cmd.Currency)
	case "compact":
		return format.CurrencyCompact(value, cmd.Currency)
	case "percentage":
		return format.Percentage(value, cmd.Decimals)
	case "change":
		return format.Change(value, cmd.Decimals)
	default:
		return format.Number(value, cmd.Decimals)
	}
}

func parseNumber(raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil
	}
	return format.Float(v)
}
